package server

// indexHTML is the minimal status page served at the root. It renders the
// snapshot totals and stays current over the architecture WebSocket.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>archmap</title>
<style>
  body { font-family: -apple-system, Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 40rem; color: #2c3e50; }
  h1 { font-size: 1.4rem; }
  .stats { display: flex; gap: 1rem; flex-wrap: wrap; margin: 1rem 0; }
  .stat { border: 1px solid #dfe6e9; border-radius: 8px; padding: 0.8rem 1.2rem; min-width: 8rem; }
  .stat b { display: block; font-size: 1.6rem; }
  .cycles { color: #c0392b; }
  button { padding: 0.5rem 1rem; border-radius: 6px; border: 1px solid #2c3e50; background: white; cursor: pointer; }
  #status { color: #7f8c8d; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>archmap</h1>
<div class="stats">
  <div class="stat">Modules<b id="modules">-</b></div>
  <div class="stat">Lines<b id="lines">-</b></div>
  <div class="stat">Dependencies<b id="deps">-</b></div>
  <div class="stat cycles">Cycles<b id="cycles">-</b></div>
</div>
<button onclick="refresh()">Rescan</button>
<p id="status"></p>
<script>
function render(a) {
  document.getElementById('modules').textContent = a.total_modules;
  document.getElementById('lines').textContent = a.total_lines;
  document.getElementById('deps').textContent = a.edges.length;
  document.getElementById('cycles').textContent = a.circular_dependencies.length;
  document.getElementById('status').textContent = 'last scan: ' + a.last_scan;
}
function load() {
  fetch('/api/architecture').then(function(r) { return r.json(); }).then(render);
}
function refresh() {
  document.getElementById('status').textContent = 'rescanning...';
  fetch('/api/refresh', {method: 'POST'}).then(load);
}
try {
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + location.host + '/ws/architecture');
  ws.onmessage = function(ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === 'architecture_update' && msg.data) { render(msg.data); }
  };
} catch (e) {}
load();
</script>
</body>
</html>
`
