package web

// One chart per collected instrument, fed from /charts.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Trade</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
  <style>
    body {
      margin: 0;
      padding: 2rem;
      background: #ffffff;
      color: #111111;
      font-family: 'Space Mono', 'JetBrains Mono', monospace;
    }
    h1 {
      font-size: .8rem;
      text-transform: uppercase;
      letter-spacing: .2em;
    }
    .chart-card {
      border: 3px solid #111111;
      background: #f6f6f6;
      padding: 1.5rem;
      margin-bottom: 1.5rem;
      box-shadow: 8px 8px 0 rgba(0,0,0,.15);
    }
    .chart-card h2 { margin: 0 0 1rem; font-size: .7rem; letter-spacing: .1em; }
    .empty { color: #9c9c9c; font-size: .7rem; }
  </style>
</head>
<body>
  <h1>Portfolio charts</h1>
  <div id="charts"><p class="empty">loading…</p></div>
  <script>
    async function load() {
      const res = await fetch('/charts' + window.location.search);
      const series = await res.json();
      const root = document.getElementById('charts');
      root.innerHTML = '';
      if (!series || !series.length) {
        root.innerHTML = '<p class="empty">no collected data yet — run the collect command</p>';
        return;
      }
      for (const set of series) {
        const card = document.createElement('div');
        card.className = 'chart-card';
        card.innerHTML = '<h2>' + set.instrument + '</h2><canvas></canvas>';
        root.appendChild(card);
        new Chart(card.querySelector('canvas'), {
          type: 'line',
          data: {
            labels: set.points.map(p => new Date(p.ts).toLocaleString()),
            datasets: [{
              label: set.instrument,
              data: set.points.map(p => Number(p.price)),
              borderColor: '#111111',
              backgroundColor: 'rgba(0,0,0,.05)',
              pointRadius: 0,
              borderWidth: 2,
              fill: true,
            }]
          },
          options: {
            animation: false,
            plugins: { legend: { display: false } },
            scales: { y: { grid: { color: 'rgba(0,0,0,0.1)' } } }
          }
        });
      }
    }
    load();
  </script>
</body>
</html>`
