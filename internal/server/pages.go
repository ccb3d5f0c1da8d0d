package server

import (
	"net/http"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

const logoSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="34" height="34" viewBox="0 0 34 34"><circle cx="17" cy="17" r="16" fill="#0179FE"/><path d="M9 21h16M12 13h10" stroke="#fff" stroke-width="3" stroke-linecap="round"/></svg>`

func renderHTML(w http.ResponseWriter, status int, node g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func page(title string, body ...g.Node) g.Node {
	return h.HTML(
		h.Lang("en"),
		h.Head(
			h.Meta(h.Charset("utf-8")),
			h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
			h.TitleEl(g.Text(title+" | Horizon")),
			h.Link(h.Rel("icon"), h.Href("/static/icons/logo.svg")),
			h.Link(h.Rel("preconnect"), h.Href("https://fonts.googleapis.com")),
			h.Link(h.Rel("preconnect"), h.Href("https://fonts.gstatic.com"), g.Attr("crossorigin", "")),
			h.Link(h.Rel("stylesheet"), h.Href("https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&family=IBM+Plex+Serif:wght@400;700&display=swap")),
			h.Script(
				h.Type("module"),
				h.Src("https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"),
			),
		),
		h.Body(
			h.Main(h.Class("flex min-h-screen w-full justify-center"), g.Group(body)),
		),
	)
}

func errorPage(title, message string) g.Node {
	return page(title,
		h.Section(
			h.Class("auth-form"),
			h.H1(h.Class("page-title"), g.Text(title)),
			h.P(g.Text(message)),
			h.P(h.A(h.Href("/sign-in"), g.Text("Back to sign in"))),
		),
	)
}

func homePage(name string, csrf g.Node) g.Node {
	return page("Home",
		h.Section(
			h.Class("home"),
			h.H1(h.Class("page-title"), g.Text("Welcome, "+name)),
			h.P(g.Text("You are signed in.")),
			h.Form(
				h.Method("post"),
				h.Action("/logout"),
				csrf,
				h.Button(h.Type("submit"), h.Class("btn btn-sm"), g.Text("Sign out")),
			),
		),
	)
}

func serveLogo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(logoSVG))
}
