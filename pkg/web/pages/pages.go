package pages

import (
	"errors"
	"log/slog"
	"net/http"

	"webeng-hq/hello/pkg/greeting"
	"webeng-hq/hello/pkg/session"
	"webeng-hq/hello/pkg/statistics"
	"webeng-hq/hello/pkg/users"
)

const (
	anonymous    = "anonymous"
	guestWelcome = "Welcome to Modern Web App!"
)

// View is the data passed to every page template.
type View struct {
	Title    string
	Username string
	Role     users.Role
	SignedIn bool
	IsAdmin  bool

	Message string
	Name    string
	Error   string

	ViewTitle string
	History   []greeting.Entry
	Stats     *statistics.Statistics
}

// Pages serves the HTML routes.
type Pages struct {
	renderer   *Renderer
	greetings  *greeting.Service
	users      *users.Service
	statistics *statistics.Service
	sessions   *session.Manager

	welcomeMessage string
	logger         *slog.Logger
}

// New creates the page handlers. welcomeMessage is shown on / when no name
// is given.
func New(renderer *Renderer, g *greeting.Service, u *users.Service, s *statistics.Service, sessions *session.Manager, welcomeMessage string) *Pages {
	return &Pages{
		renderer:       renderer,
		greetings:      g,
		users:          u,
		statistics:     s,
		sessions:       sessions,
		welcomeMessage: welcomeMessage,
		logger:         renderer.logger,
	}
}

// Register mounts the page routes on mux.
func (p *Pages) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", p.welcome)
	mux.HandleFunc("GET /login", p.loginPage)
	mux.HandleFunc("POST /login", p.login)
	mux.HandleFunc("GET /register", p.registerPage)
	mux.HandleFunc("POST /register", p.register)
	mux.HandleFunc("GET /home", p.home)
	mux.HandleFunc("GET /logout", p.logout)
	mux.HandleFunc("GET /history", p.myHistory)
	mux.HandleFunc("GET /history/all", p.allHistory)
	mux.HandleFunc("GET /history/{username}", p.userHistory)
	mux.HandleFunc("GET /statistics", p.statisticsPage)
}

// view returns a View filled with the session of r.
func (p *Pages) view(r *http.Request, title string) View {
	v := View{Title: title, Username: anonymous, Role: users.RoleUser}
	if name, role, ok := p.sessions.Identity(r); ok {
		v.Username = name
		v.Role = role
		v.SignedIn = true
		v.IsAdmin = role == users.RoleAdmin
	}
	return v
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, v View) {
	if err := p.renderer.Render(w, status, name, v); err != nil {
		p.logger.ErrorContext(r.Context(), "failed to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (p *Pages) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	p.logger.ErrorContext(r.Context(), "page request failed", "op", op, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// denied renders the home page with an error for a signed-in user lacking
// permission.
func (p *Pages) denied(w http.ResponseWriter, r *http.Request, v View, message string) {
	v.Title = "Home"
	v.Error = message
	p.render(w, r, http.StatusForbidden, PageHome, v)
}

func (p *Pages) welcome(w http.ResponseWriter, r *http.Request) {
	v := p.view(r, "Welcome")
	v.Name = r.URL.Query().Get("name")
	v.Message = p.welcomeMessage

	if v.Name != "" {
		msg, _, err := p.greetings.Greet(r.Context(), v.Name)
		if err != nil {
			p.serverError(w, r, "greet", err)
			return
		}
		v.Message = msg
	}
	p.render(w, r, http.StatusOK, PageWelcome, v)
}

func (p *Pages) loginPage(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, PageLogin, p.view(r, "Log in"))
}

func (p *Pages) login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	ok, err := p.users.Authenticate(r.Context(), username, r.FormValue("password"))
	if err != nil {
		p.serverError(w, r, "login", err)
		return
	}
	if !ok {
		v := p.view(r, "Log in")
		v.Error = "Invalid username or password"
		p.render(w, r, http.StatusUnauthorized, PageLogin, v)
		return
	}

	u, err := p.users.Get(r.Context(), username)
	if err != nil {
		p.serverError(w, r, "login", err)
		return
	}
	p.sessions.Create(w, u.Username, u.Role)
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (p *Pages) registerPage(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, PageRegister, p.view(r, "Register"))
}

func (p *Pages) register(w http.ResponseWriter, r *http.Request) {
	fail := func(status int, message string) {
		v := p.view(r, "Register")
		v.Error = message
		p.render(w, r, status, PageRegister, v)
	}

	role, err := users.ParseRole(r.FormValue("role"))
	if err != nil {
		fail(http.StatusBadRequest, "Role must be ADMIN or USER")
		return
	}

	u, err := p.users.Create(r.Context(), r.FormValue("username"), r.FormValue("password"), role)
	switch {
	case errors.Is(err, users.ErrUserExists):
		fail(http.StatusConflict, "Username already taken")
		return
	case errors.Is(err, users.ErrInvalidInput):
		fail(http.StatusBadRequest, "Username and password are required")
		return
	case err != nil:
		p.serverError(w, r, "register", err)
		return
	}

	p.sessions.Create(w, u.Username, u.Role)
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (p *Pages) home(w http.ResponseWriter, r *http.Request) {
	v := p.view(r, "Home")
	v.Message = guestWelcome
	if v.SignedIn {
		msg, _, err := p.greetings.Greet(r.Context(), v.Username)
		if err != nil {
			p.serverError(w, r, "greet", err)
			return
		}
		v.Message = msg
	}
	p.render(w, r, http.StatusOK, PageHome, v)
}

func (p *Pages) logout(w http.ResponseWriter, r *http.Request) {
	p.sessions.Destroy(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (p *Pages) myHistory(w http.ResponseWriter, r *http.Request) {
	name, _, ok := p.sessions.Identity(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/history/"+name, http.StatusSeeOther)
}

func (p *Pages) allHistory(w http.ResponseWriter, r *http.Request) {
	v := p.view(r, "History")
	if !v.IsAdmin {
		p.denied(w, r, v, "You are not allowed to see every history")
		return
	}

	entries, err := p.greetings.AllHistory(r.Context())
	if err != nil {
		p.serverError(w, r, "history", err)
		return
	}
	v.ViewTitle = "All Users"
	v.History = entries
	p.render(w, r, http.StatusOK, PageHistory, v)
}

func (p *Pages) userHistory(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	v := p.view(r, "History")
	if !v.SignedIn || (v.Username != username && !v.IsAdmin) {
		p.denied(w, r, v, "You are not allowed to see this history")
		return
	}

	entries, err := p.greetings.History(r.Context(), username)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		p.serverError(w, r, "history", err)
		return
	}
	v.ViewTitle = username
	v.History = entries
	p.render(w, r, http.StatusOK, PageHistory, v)
}

func (p *Pages) statisticsPage(w http.ResponseWriter, r *http.Request) {
	v := p.view(r, "Statistics")
	if !v.IsAdmin {
		p.denied(w, r, v, "You are not allowed to see the statistics")
		return
	}

	stats, err := p.statistics.Get(r.Context())
	if err != nil {
		p.serverError(w, r, "statistics", err)
		return
	}
	v.Stats = stats
	p.render(w, r, http.StatusOK, PageStatistics, v)
}
