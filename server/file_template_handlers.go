package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/jrsteele09/go-adcampaign-dashboard/campaigns"
	"github.com/jrsteele09/go-adcampaign-dashboard/guards"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/forms"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const layoutTemplate = "layout.html"

// Page templates, each rendered inside the layout
const (
	pageLogin          = "login.html"
	pageRegister       = "register.html"
	pageForgotPassword = "forgot_password.html"
	pagePasswordReset  = "password_reset.html"
	pageCampaigns      = "campaigns.html"
	pageCreatePlatform = "create_platform.html"
	pageCreateDetails  = "create_details.html"
	pageProfile        = "profile.html"
	pageLoading        = "loading.html"
	pageNotFound       = "not_found.html"
)

var allPages = []string{
	pageLogin, pageRegister, pageForgotPassword, pagePasswordReset,
	pageCampaigns, pageCreatePlatform, pageCreateDetails, pageProfile,
	pageLoading, pageNotFound,
}

// pageGuards tells the session script which way a page re-routes
var pageGuards = map[string]guards.Kind{
	pageLogin:          guards.Guest,
	pageRegister:       guards.Guest,
	pageForgotPassword: guards.Guest,
	pagePasswordReset:  guards.Guest,
	pageCampaigns:      guards.Protected,
	pageCreatePlatform: guards.Protected,
	pageCreateDetails:  guards.Protected,
	pageProfile:        guards.Protected,
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"money": func(v float64) string {
		return "$" + strconv.FormatFloat(v, 'f', 2, 64)
	},
	"has": func(values []string, v any) bool {
		return slices.Contains(values, fmt.Sprint(v))
	},
	"genderLabel": campaigns.GenderLabel,
}

type pageSet struct {
	pages map[string]*template.Template
}

// parsePages parses every page together with the layout once at startup
func parsePages() (*pageSet, error) {
	fsys := TemplateFilesFS()
	set := &pageSet{pages: make(map[string]*template.Template, len(allPages))}
	for _, name := range allPages {
		t, err := template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(fsys, layoutTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		set.pages[name] = t
	}
	return set, nil
}

// pageData is what the layout and every page template render from
type pageData struct {
	AppName     string
	Title       string
	ActivePage  string
	Session     sessions.Session
	Error       string
	Message     string
	Fields      forms.FieldErrors
	Form        url.Values
	Guard       string
	AutoRefresh int // seconds, 0 for none
	Content     any
}

// render executes page into a buffer first so a template failure still
// produces a clean 500
func (s *Server) render(w http.ResponseWriter, status int, page string, data pageData) {
	t, ok := s.pages.pages[page]
	if !ok {
		log.Error().Str("page", page).Msg("Unknown page template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	data.AppName = s.config.GetAppName()
	data.Session = s.state.Snapshot()
	if kind, ok := pageGuards[page]; ok {
		data.Guard = kind.String()
	}
	if data.Error == "" && data.Fields != nil {
		data.Error = data.Fields.Form()
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		log.Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
