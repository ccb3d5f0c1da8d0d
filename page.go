package authform

import (
	g "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	h "maragu.dev/gomponents/html"
)

// PageOptions carries request scoped extras for Render.
type PageOptions struct {
	// Hidden nodes are placed inside the form, e.g. a CSRF token input.
	Hidden []g.Node
	// Providers are OAuth provider names offered below the sign-in form.
	Providers []string
}

// Render returns the auth form section for the current controller state.
func (c *Controller) Render(opts PageOptions) g.Node {
	ui := c.UI()
	if ui.CurrentUser != nil {
		return h.Section(
			h.Class("auth-form"),
			header("Link Account", "Link your account to get started"),
			h.Div(
				h.Class("flex flex-col gap-4"),
				h.ID("link-account"),
				h.P(g.Text("Welcome, "+ui.CurrentUser.User.DisplayName()+".")),
			),
		)
	}

	fields := c.Fields()
	signals := make(map[string]any, len(fields))
	inputs := make([]g.Node, 0, len(fields))
	for _, f := range fields {
		if f.Type == "password" {
			signals[f.Name] = ""
		} else {
			signals[f.Name] = f.Value
		}
		inputs = append(inputs, RenderField(f))
	}

	return h.Section(
		h.Class("auth-form"),
		header(c.mode.Title(), "Please enter your details"),
		g.If(ui.Failure != "", h.Div(h.Class("form-alert"), g.Attr("role", "alert"), g.Text(ui.Failure))),
		h.Form(
			h.Method("post"),
			h.Action(c.mode.Path()),
			h.Class("space-y-8"),
			g.Attr("novalidate"),
			data.Signals(signals),
			g.Group(opts.Hidden),
			g.Group(inputs),
			h.Div(
				h.Class("flex flex-col gap-4"),
				submitButton(c.mode, ui.IsLoading),
			),
		),
		g.If(c.mode == SignIn && len(opts.Providers) > 0, providerLinks(opts.Providers)),
		h.Footer(
			h.Class("flex justify-center gap-1"),
			h.P(h.Class("text-14 font-normal text-gray-600"), g.Text(c.mode.footerPrompt())),
			h.A(h.Class("form-link"), h.Href(c.mode.Other().Path()), g.Text(c.mode.Other().Title())),
		),
	)
}

func header(title, subtitle string) g.Node {
	return h.Header(
		h.Class("flex flex-col gap-5 md:gap-8"),
		h.A(
			h.Href("/"),
			h.Class("cursor-pointer flex items-center gap-1"),
			h.Img(h.Src("/static/icons/logo.svg"), h.Width("34"), h.Height("34"), h.Alt("Horizon Logo")),
			h.H1(h.Class("text-26 font-ibm-plex-serif font-bold text-black-1"), g.Text("Horizon")),
		),
		h.Div(
			h.Class("flex flex-col gap-1 md:gap-3"),
			h.H1(h.Class("text-24 lg:text-36 font-semibold text-gray-900"), g.Text(title)),
			h.P(h.Class("text-16 font-normal text-gray-600"), g.Text(subtitle)),
		),
	)
}

func submitButton(m Mode, loading bool) g.Node {
	if loading {
		return h.Button(h.Type("submit"), h.Class("form-btn"), h.Disabled(), g.Text("Loading..."))
	}
	return h.Button(h.Type("submit"), h.Class("form-btn"), g.Text(m.Title()))
}

func providerLinks(names []string) g.Node {
	links := make([]g.Node, 0, len(names))
	for _, name := range names {
		links = append(links, h.A(h.Class("btn oauth-link"), h.Href("/oauth/"+name), g.Text("Continue with "+name)))
	}
	return h.Div(h.Class("flex flex-col gap-2"), g.Group(links))
}
