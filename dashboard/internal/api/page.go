package api

import (
	"html/template"

	"github.com/revealboard/revealboard/dashboard/internal/chart"
)

type pageData struct {
	Title     string
	LastError string
	Loading   bool
	Slices    []chart.Slice
	SVG       template.HTML // rendered by chart.WriteSVG, names already escaped
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body { font-family: sans-serif; display: flex; flex-direction: column; align-items: center; }
  #chart svg { max-width: 90vw; height: auto; }
  #chart text { font-size: 28px; fill: #ffffff; }
  .error { color: #b00020; }
  .legend span { display: inline-block; margin: 0 1em; }
  .swatch { display: inline-block; width: 0.8em; height: 0.8em; margin-right: 0.3em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p id="error" class="error"{{if not .LastError}} hidden{{end}}>{{.LastError}}</p>
<div id="chart">{{if .Loading}}<p>Loading…</p>{{else}}{{.SVG}}{{end}}</div>
<div id="legend" class="legend">{{range .Slices}}<span><i class="swatch" style="background: {{.Fill}}"></i>{{.Name}}: {{.Percent}}</span>{{end}}</div>
<script>
(function () {
  var chart = document.getElementById("chart");
  var errEl = document.getElementById("error");
  var legend = document.getElementById("legend");

  function render(state) {
    errEl.textContent = state.last_error || "";
    errEl.hidden = !state.last_error;
    legend.textContent = "";
    state.slices.forEach(function (s) {
      var span = document.createElement("span");
      var sw = document.createElement("i");
      sw.className = "swatch";
      sw.style.background = s.fill;
      span.appendChild(sw);
      span.appendChild(document.createTextNode(s.name + ": " + s.percent));
      legend.appendChild(span);
    });
    if (!state.current) {
      chart.innerHTML = "<p>Loading…</p>";
      return;
    }
    fetch("/chart.svg", { cache: "no-store" })
      .then(function (r) { return r.text(); })
      .then(function (svg) { chart.innerHTML = svg; })
      .catch(function () {});
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws/stream");
    ws.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      if (msg.event === "state") render(msg.data);
    };
    ws.onclose = function () { setTimeout(connect, 2000); };
  }
  connect();
})();
</script>
</body>
</html>
`))
