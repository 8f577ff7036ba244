package server

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/vango-dev/compose/internal/examples"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<style>
body { font-family: sans-serif; padding: 1.25rem; }
.example { margin-bottom: 2.5rem; }
button { color: #fff; border: 0; border-radius: 4px; padding: .5rem .75rem; }
.reactive button { background: #48bb78; }
.ref button { background: #4299e1; }
.watch button { background: #f56565; }
</style>
</head>
<body>
{{range .Examples}}<div class="example {{.Name}}">
  {{.Title}}: <button data-component="{{.Name}}">Count is: 0</button>
</div>
{{end}}<pre id="error"></pre>
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (ev) => {
  const msg = JSON.parse(ev.data);
  if (msg.type === "error") {
    document.getElementById("error").textContent = msg.error.code + ": " + msg.error.message;
    return;
  }
  for (const c of msg.components) {
    const button = document.querySelector('button[data-component="' + c.name + '"]');
    if (button) button.textContent = c.label;
  }
};
document.querySelectorAll("button[data-component]").forEach((button) => {
  button.addEventListener("click", () => {
    ws.send(JSON.stringify({ component: button.dataset.component, action: "increment" }));
  });
});
</script>
</body>
</html>
`))

type pageData struct {
	Name     string
	Examples []examples.Example
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Name: s.cfg.Name}
	for _, name := range s.cfg.Demo.Components {
		if ex, ok := examples.Lookup(name, slog.Default()); ok {
			data.Examples = append(data.Examples, ex)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}
