package graph

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/a-h/templ"
	"github.com/go-faster/errors"
)

const visNetworkURL = "https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"

const pageScript = `<script>
(function () {
  var data = JSON.parse(document.getElementById("graph-data").textContent);
  var nodes = new vis.DataSet(data.nodes);
  var edges = new vis.DataSet(data.edges.map(function (e) {
    if (data.directed) { e.arrows = "to"; }
    return e;
  }));
  new vis.Network(document.getElementById("graph"), {nodes: nodes, edges: edges}, {
    nodes: {shape: "dot", font: {color: "#ffffff"}},
    edges: {smooth: false, font: {color: "#cccccc", strokeWidth: 0}},
    physics: {solver: "barnesHut", barnesHut: {gravitationalConstant: -3000, centralGravity: 0.3}},
    interaction: {hover: true, tooltipDelay: 100}
  });
})();
</script>`

// Page renders g as a standalone vis-network HTML document.
func Page(g *Subgraph) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := templ.EscapeString(g.Title)
		head := `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>` + title + `</title>
<script src="` + visNetworkURL + `"></script>
<style>
html, body { margin: 0; height: 100%; background: #222222; color: #ffffff; font-family: sans-serif; }
h1 { font-size: 16px; margin: 8px 12px; }
#graph { width: 100%; height: calc(100% - 40px); }
</style>
</head>
<body>
<h1>` + title + `</h1>
<div id="graph"></div>
`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := templ.JSONScript("graph-data", g).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n"+pageScript+"\n</body>\n</html>\n")
		return err
	})
}

// Renderer writes pages under an exports directory.
type Renderer struct {
	dir string
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Save writes g to <dir>/<name>.html and returns the path.
func (r *Renderer) Save(ctx context.Context, g *Subgraph, name string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create exports dir")
	}
	path := filepath.Join(r.dir, name+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create page")
	}
	if err := Page(g).Render(ctx, f); err != nil {
		_ = f.Close()
		return "", errors.Wrap(err, "render page")
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// SafeName keeps letters, digits, '-' and '_' of title, lowercased.
func SafeName(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if b.Len() == 0 {
		return "subgraph"
	}
	return b.String()
}
