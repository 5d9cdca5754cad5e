package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cinema-booking-cli/app"
	"cinema-booking-cli/catalog"
	"cinema-booking-cli/editsession"
	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
	"cinema-booking-cli/store"
	"cinema-booking-cli/workflow"
)

type appState int

const (
	stateLoading appState = iota
	stateMovies
	stateScreenings
	stateTop
	stateLogin
	stateRegister
	stateMovieForm
	stateScreeningForm
	stateDateFilter
	stateBooking
	stateProfile
	stateConfirm
	stateError
)

// confirmation is a pending y/n question.
type confirmation struct {
	prompt      string
	onYes       func(m appModel) (appModel, tea.Cmd)
	returnState appState
}

type appModel struct {
	app *app.App

	state     appState
	lastState appState
	err       error

	width  int
	height int

	movieList     list.Model
	screeningList list.Model
	topList       list.Model
	bookingList   list.Model

	search         string
	movieFilter    int
	dateFilter     time.Time
	dateScreenings []model.Screening

	detail *model.Movie
	stats  *model.ScreeningStats

	form       form
	formReturn appState

	flow        *workflow.BookingFlow
	profile     *workflow.Profile
	profileView workflow.ProfileView

	confirm confirmation

	loading   bool
	pending   bool
	status    string
	statusErr string

	spinner spinner.Model
}

// New returns the bubbletea model for the full-screen client.
func New(a *app.App) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return appModel{
		app:           a,
		state:         stateLoading,
		movieList:     newList("Movies"),
		screeningList: newList("Screenings"),
		topList:       newList("Top movies"),
		bookingList:   newList("My bookings"),
		loading:       true,
		spinner:       sp,
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.handleSearchInput(msg) {
			return m, nil
		}
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loading || m.pending {
			return m, cmd
		}
		return m, nil

	case refreshMsg:
		m.loading = false
		m.syncCatalog()
		snapshot := m.app.Catalog.Snapshot()
		if snapshot.MoviesErr != nil && snapshot.ScreeningsErr != nil {
			m.err = msg.err
			m.lastState = stateMovies
			m.state = stateError
			return m, nil
		}
		if m.state == stateLoading {
			m.state = stateMovies
		}
		if !m.dateFilter.IsZero() {
			return m, m.dateFilterCmd(m.dateFilter)
		}
		return m, nil

	case loginMsg:
		m.pending = false
		if msg.err != nil {
			m.statusErr = service.Message(msg.err)
			m.form.set(1, "")
			return m, nil
		}
		m.state = m.formReturn
		m.status = fmt.Sprintf("Signed in as %s", msg.result.User.Username)
		m.statusErr = ""
		if msg.result.RefreshErr != nil {
			m.statusErr = service.Message(msg.result.RefreshErr)
		}
		m.syncCatalog()
		return m, nil

	case logoutMsg:
		m.pending = false
		m.status = "Signed out"
		m.statusErr = ""
		if msg.err != nil {
			m.statusErr = service.Message(msg.err)
		}
		m.syncCatalog()
		return m, nil

	case registerMsg:
		m.pending = false
		if msg.err != nil {
			m.statusErr = service.Message(msg.err)
			return m, nil
		}
		cmd := m.openLogin(msg.email)
		m.status = "Registration successful, please sign in"
		return m, cmd

	case movieDetailMsg:
		m.pending = false
		if msg.err != nil {
			m.detail = nil
			m.statusErr = service.Message(msg.err)
			return m, nil
		}
		movie := msg.movie
		m.detail = &movie
		return m, nil

	case topMoviesMsg:
		m.pending = false
		if msg.err != nil {
			m.topList.SetItems(nil)
			m.statusErr = service.Message(msg.err)
			return m, nil
		}
		m.topList.SetItems(buildTopItems(msg.top))
		return m, nil

	case statsMsg:
		m.pending = false
		if msg.err != nil {
			m.stats = nil
			m.statusErr = service.Message(msg.err)
			return m, nil
		}
		stats := msg.stats
		m.stats = &stats
		return m, nil

	case dateFilterMsg:
		m.pending = false
		if msg.err != nil {
			m.dateFilter = time.Time{}
			m.dateScreenings = nil
			m.statusErr = service.Message(msg.err)
		} else {
			m.dateFilter = msg.date
			m.dateScreenings = msg.screenings
		}
		m.syncCatalog()
		return m, nil

	case submitMsg:
		return m.handleSubmitResult(msg)

	case deleteMovieMsg:
		m.pending = false
		if msg.err != nil && !catalog.MutationApplied(msg.err) {
			m.statusErr = service.Message(msg.err)
			return m, nil
		}
		m.detail = nil
		m.status = fmt.Sprintf("Deleted %q", msg.title)
		m.statusErr = ""
		if msg.err != nil {
			m.statusErr = service.Message(msg.err)
		}
		m.syncCatalog()
		return m, nil

	case bookingOpenMsg:
		m.pending = false
		if msg.err != nil {
			m.statusErr = service.Message(msg.err)
			return m, nil
		}
		m.flow = msg.flow
		m.form = newForm("Book a seat", field{label: "Seat", placeholder: "e.g. A5"})
		m.state = stateBooking
		m.statusErr = ""
		return m, nil

	case bookingConfirmMsg:
		if msg.flow != m.flow || errors.Is(msg.err, workflow.ErrClosed) {
			return m, nil
		}
		m.pending = false
		if msg.err != nil {
			m.statusErr = service.Message(msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Booked seat %s for %s", msg.flow.Seat(), msg.flow.MovieTitle())
		m.statusErr = ""
		m.flow = nil
		m.state = stateScreenings
		return m, nil

	case profileMsg:
		if msg.profile != m.profile || errors.Is(msg.err, workflow.ErrClosed) {
			return m, nil
		}
		m.pending = false
		if msg.err != nil {
			m.statusErr = service.Message(msg.err)
			return m, nil
		}
		m.profileView = msg.view
		m.bookingList.SetItems(buildBookingItems(msg.view.Bookings))
		if msg.deleted {
			m.status = "Booking deleted"
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateMovies:
		m.movieList, cmd = m.movieList.Update(msg)
	case stateScreenings:
		m.screeningList, cmd = m.screeningList.Update(msg)
	case stateTop:
		m.topList, cmd = m.topList.Update(msg)
	case stateProfile:
		m.bookingList, cmd = m.bookingList.Update(msg)
	case stateLogin, stateRegister, stateMovieForm, stateScreeningForm, stateDateFilter, stateBooking:
		cmd = m.form.update(msg)
	}
	return m, cmd
}

func (m appModel) handleSubmitResult(msg submitMsg) (tea.Model, tea.Cmd) {
	m.pending = false
	mode := m.app.Movies.State().Mode
	if msg.entity == "screening" {
		mode = m.app.Screenings.State().Mode
	}
	if mode != editsession.Idle {
		// still open: validation, authorization or server rejection
		m.statusErr = service.Message(msg.err)
		return m, nil
	}
	m.state = m.formReturn
	m.status = fmt.Sprintf("Saved %s", msg.entity)
	m.statusErr = ""
	if msg.err != nil {
		m.statusErr = service.Message(msg.err)
	}
	m.syncCatalog()
	return m, nil
}

func (m appModel) View() string {
	header := m.headerView()
	var body string
	switch m.state {
	case stateLoading:
		body = fmt.Sprintf("%s Loading catalog\n\n%s", m.spinner.View(), hint("Fetching movies and screenings..."))
	case stateMovies:
		body = m.catalogBanner(m.app.Catalog.Snapshot().MoviesErr) + m.movieList.View() + m.detailView()
	case stateScreenings:
		body = m.catalogBanner(m.app.Catalog.Snapshot().ScreeningsErr) + m.screeningList.View() + m.statsView()
	case stateTop:
		body = m.topList.View()
	case stateLogin, stateRegister, stateMovieForm, stateScreeningForm, stateDateFilter:
		body = m.form.view()
	case stateBooking:
		body = m.bookingView()
	case stateProfile:
		body = m.profileHeader() + "\n\n" + m.bookingList.View()
	case stateConfirm:
		body = lipgloss.NewStyle().Bold(true).Render(m.confirm.prompt) + "\n\n" + hint("y confirm • n/esc cancel")
	case stateError:
		text := "could not load the catalog"
		if m.err != nil {
			text = service.Message(m.err)
		}
		body = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(text) + "\n\n" + hint("Press ctrl+r to retry, esc to go back or ctrl+c to quit.")
	}
	return header + "\n\n" + body + m.statusView()
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Cinema")
	sub := []string{}
	if user, ok := m.app.Session.CurrentUser(); ok {
		who := "Signed in as " + user.Username
		if user.IsAdmin {
			who += " (admin)"
		}
		sub = append(sub, who)
		if expires, ok := m.app.Session.ExpiresAt(); ok {
			sub = append(sub, "Session until "+expires.Local().Format(timeLayout))
		}
	} else {
		sub = append(sub, "Browsing anonymously")
	}
	if m.loading || m.pending {
		sub = append(sub, m.spinner.View()+" working")
	}
	meta := "\n" + lipgloss.NewStyle().Faint(true).Render(strings.Join(sub, " • "))

	tabs := ""
	if m.isBrowseState() {
		tabs = "\n" + m.tabsView()
	}
	filterLine := ""
	switch m.state {
	case stateMovies:
		if m.search != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Search: %s", m.search))
		}
	case stateScreenings:
		filters := []string{}
		if m.movieFilter != model.AllMovies {
			title := model.UnknownMovieTitle
			if movie, ok := m.app.Catalog.Movie(m.movieFilter); ok {
				title = movie.Title
			}
			filters = append(filters, "Movie: "+title)
		}
		if !m.dateFilter.IsZero() {
			filters = append(filters, "Date: "+m.dateFilter.Format(time.DateOnly))
		}
		if len(filters) > 0 {
			filterLine = "\n" + hint(strings.Join(filters, " • "))
		}
	}
	return title + meta + tabs + filterLine + "\n" + hint(m.hints())
}

func (m appModel) hints() string {
	admin := m.app.Session.IsAdmin()
	account := "ctrl+l sign in • ctrl+g register"
	if m.app.Session.Authenticated() {
		account = "ctrl+l sign out • ctrl+p profile"
	}
	switch m.state {
	case stateMovies:
		h := "ctrl+c quit • tab switch • type to search • enter details • ctrl+r reload • " + account
		if admin {
			h += " • ctrl+n new • ctrl+e edit • ctrl+x delete"
		}
		return h
	case stateScreenings:
		h := "ctrl+c quit • tab switch • enter book • ctrl+f movie filter • ctrl+d date filter • ctrl+s stats • " + account
		if admin {
			h += " • ctrl+n new"
		}
		return h
	case stateTop:
		return "ctrl+c quit • tab switch • ctrl+r reload • " + account
	case stateLogin, stateRegister, stateMovieForm, stateScreeningForm, stateDateFilter:
		return "ctrl+c quit • esc cancel • tab next field • enter submit"
	case stateBooking:
		return "ctrl+c quit • esc close • enter confirm"
	case stateProfile:
		return "ctrl+c quit • esc back • x delete booking • ctrl+r reload"
	default:
		return "ctrl+c quit • esc back"
	}
}

func (m appModel) tabsView() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("63")).Padding(0, 1)
	inactive := lipgloss.NewStyle().Faint(true).Padding(0, 1)
	tabs := []struct {
		label string
		state appState
	}{
		{"Movies", stateMovies},
		{"Screenings", stateScreenings},
		{"Top", stateTop},
	}
	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		if tab.state == m.state {
			parts = append(parts, active.Render(tab.label))
		} else {
			parts = append(parts, inactive.Render(tab.label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m appModel) catalogBanner(err error) string {
	if err == nil {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(service.Message(err)) + "\n\n"
}

func (m appModel) detailView() string {
	if m.detail == nil {
		return ""
	}
	movie := m.detail
	lines := []string{lipgloss.NewStyle().Bold(true).Render(movie.Title)}
	meta := []string{}
	if movie.Year > 0 {
		meta = append(meta, strconv.Itoa(movie.Year))
	}
	if movie.AdminName != "" {
		meta = append(meta, "added by "+movie.AdminName)
	}
	if len(meta) > 0 {
		lines = append(lines, hint(strings.Join(meta, " • ")))
	}
	if movie.Description != "" {
		width := m.width - 4
		if width < 20 {
			width = 76
		}
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(movie.Description))
	}
	if movie.ImageURL != "" {
		lines = append(lines, hint(movie.ImageURL))
	}
	return "\n\n" + strings.Join(lines, "\n")
}

func (m appModel) statsView() string {
	if m.stats == nil {
		return ""
	}
	s := m.stats
	return "\n\n" + hint(fmt.Sprintf("Screening #%d: %d/%d seats booked (%.1f%%)", s.ScreeningId, s.BookingCount, s.TotalSeats, s.Percentage))
}

func (m appModel) bookingView() string {
	if m.flow == nil {
		return ""
	}
	screening := m.flow.Screening()
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(m.flow.MovieTitle()),
		hint(fmt.Sprintf("%s • room %s", screening.Time.Local().Format(timeLayout), screening.Room)),
	}
	if screening.Movie != nil && screening.Movie.Description != "" {
		lines = append(lines, truncate(screening.Movie.Description, 200))
	}
	return strings.Join(lines, "\n") + "\n\n" + m.form.view()
}

func (m appModel) profileHeader() string {
	view := m.profileView
	lines := []string{lipgloss.NewStyle().Bold(true).Render(view.User.Username)}
	if view.User.EmailAddress != "" {
		lines = append(lines, hint(view.User.EmailAddress))
	}
	if view.StatsErr != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("stats: "+service.Message(view.StatsErr)))
	} else {
		lines = append(lines, fmt.Sprintf("Total bookings: %d", view.Stats.TotalBookings))
	}
	if view.BookingsErr != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("bookings: "+service.Message(view.BookingsErr)))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) statusView() string {
	out := ""
	if m.status != "" {
		out += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render(m.status)
	}
	if m.statusErr != "" {
		out += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.statusErr)
	}
	return out
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		if m.flow != nil {
			m.flow.Close()
		}
		if m.profile != nil {
			m.profile.Close()
		}
		return m, tea.Quit, true
	}

	switch m.state {
	case stateConfirm:
		return m.handleConfirmKey(msg)
	case stateLogin, stateRegister, stateMovieForm, stateScreeningForm, stateDateFilter, stateBooking:
		return m.handleFormKey(msg)
	case stateError:
		switch msg.String() {
		case "esc", "enter":
			m.state = m.lastState
			return m, nil, true
		case "ctrl+r":
			m.state = stateLoading
			m.loading = true
			return m, tea.Batch(m.refreshCmd(), m.spinner.Tick), true
		}
		return m, nil, true
	case stateProfile:
		return m.handleProfileKey(msg)
	}

	if !m.isBrowseState() {
		return m, nil, false
	}
	m.statusErr = ""

	switch msg.String() {
	case "tab":
		return m.nextTab()
	case "ctrl+r":
		m.loading = true
		return m, tea.Batch(m.refreshCmd(), m.spinner.Tick), true
	case "ctrl+l":
		if m.pending {
			return m, nil, true
		}
		if m.app.Session.Authenticated() {
			m.pending = true
			return m, tea.Batch(m.logoutCmd(), m.spinner.Tick), true
		}
		cmd := m.openLogin(store.LastAccountEmail())
		return m, cmd, true
	case "ctrl+g":
		if m.app.Session.Authenticated() {
			return m, nil, true
		}
		cmd := m.openRegister()
		return m, cmd, true
	case "ctrl+p":
		return m.openProfile()
	case "ctrl+n":
		if m.state == stateScreenings {
			return m.openScreeningForm()
		}
		if m.state == stateMovies {
			return m.openMovieForm(nil)
		}
	case "ctrl+e":
		if m.state == stateMovies {
			item, ok := m.movieList.SelectedItem().(movieItem)
			if !ok {
				return m, nil, true
			}
			return m.openMovieForm(&item.movie)
		}
	case "ctrl+x":
		if m.state == stateMovies {
			return m.confirmDeleteMovie()
		}
	case "ctrl+f":
		if m.state == stateScreenings {
			m.cycleMovieFilter()
			return m, nil, true
		}
	case "ctrl+d":
		if m.state == stateScreenings {
			return m.toggleDateFilter()
		}
	case "ctrl+s":
		if m.state == stateScreenings {
			item, ok := m.screeningList.SelectedItem().(screeningItem)
			if !ok || m.pending {
				return m, nil, true
			}
			m.pending = true
			return m, tea.Batch(m.statsCmd(item.screening.Id), m.spinner.Tick), true
		}
	case "esc":
		if m.state == stateMovies {
			m.detail = nil
			m.search = ""
			m.syncCatalog()
		}
		m.status = ""
		return m, nil, true
	case "enter":
		switch m.state {
		case stateMovies:
			item, ok := m.movieList.SelectedItem().(movieItem)
			if !ok || m.pending {
				return m, nil, true
			}
			m.pending = true
			return m, tea.Batch(m.movieDetailCmd(item.movie.Id), m.spinner.Tick), true
		case stateScreenings:
			return m.openBooking()
		}
	}
	return m, nil, false
}

func (m appModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		if m.pending && (m.state == stateMovieForm || m.state == stateScreeningForm) {
			return m, nil, true
		}
		return m.cancelForm(), nil, true
	case "tab", "down":
		cmd := m.form.next()
		return m, cmd, true
	case "shift+tab", "up":
		cmd := m.form.prev()
		return m, cmd, true
	case "enter":
		if m.pending {
			return m, nil, true
		}
		return m.submitForm()
	}
	return m, nil, false
}

func (m appModel) cancelForm() appModel {
	switch m.state {
	case stateMovieForm:
		m.app.Movies.Cancel()
	case stateScreeningForm:
		m.app.Screenings.Cancel()
	case stateBooking:
		if m.flow != nil {
			m.flow.Close()
		}
		m.flow = nil
		m.pending = false
	}
	m.state = m.formReturn
	m.statusErr = ""
	return m
}

func (m appModel) submitForm() (tea.Model, tea.Cmd, bool) {
	m.statusErr = ""
	switch m.state {
	case stateLogin:
		m.pending = true
		return m, tea.Batch(m.loginCmd(m.form.value(0), m.form.value(1)), m.spinner.Tick), true
	case stateRegister:
		if m.form.value(2) != m.form.value(3) {
			m.statusErr = "passwords do not match"
			return m, nil, true
		}
		m.pending = true
		return m, tea.Batch(m.registerCmd(m.form.value(0), m.form.value(1), m.form.value(2)), m.spinner.Tick), true
	case stateMovieForm:
		form := editsession.MovieForm{
			Title:       m.form.value(0),
			Description: m.form.value(1),
			Year:        m.form.value(2),
			ImageURL:    m.form.value(3),
		}
		m.pending = true
		return m, tea.Batch(m.submitMovieCmd(form), m.spinner.Tick), true
	case stateScreeningForm:
		movieID, _ := strconv.Atoi(strings.TrimSpace(m.form.value(0)))
		form := editsession.ScreeningForm{
			MovieID: movieID,
			Room:    m.form.value(1),
			Time:    m.form.value(2),
		}
		m.pending = true
		return m, tea.Batch(m.submitScreeningCmd(form), m.spinner.Tick), true
	case stateDateFilter:
		date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(m.form.value(0)), time.Local)
		if err != nil {
			m.statusErr = "date must look like 2026-03-01"
			return m, nil, true
		}
		m.state = stateScreenings
		m.pending = true
		return m, tea.Batch(m.dateFilterCmd(date), m.spinner.Tick), true
	case stateBooking:
		if m.flow == nil {
			return m, nil, true
		}
		m.pending = true
		return m, tea.Batch(confirmBookingCmd(m.flow, m.form.value(0)), m.spinner.Tick), true
	}
	return m, nil, true
}

func (m appModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "y", "Y":
		onYes := m.confirm.onYes
		m.state = m.confirm.returnState
		m.confirm = confirmation{}
		if onYes == nil {
			return m, nil, true
		}
		next, cmd := onYes(m)
		return next, cmd, true
	case "n", "N", "esc":
		m.state = m.confirm.returnState
		m.confirm = confirmation{}
		return m, nil, true
	}
	return m, nil, true
}

func (m appModel) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		if m.profile != nil {
			m.profile.Close()
		}
		m.profile = nil
		m.pending = false
		m.state = m.lastState
		return m, nil, true
	case "ctrl+r":
		if m.profile == nil || m.pending {
			return m, nil, true
		}
		m.pending = true
		return m, tea.Batch(loadProfileCmd(m.profile), m.spinner.Tick), true
	case "x", "delete":
		item, ok := m.bookingList.SelectedItem().(bookingItem)
		if !ok || m.pending {
			return m, nil, true
		}
		booking := item.booking
		m.confirm = confirmation{
			prompt:      fmt.Sprintf("Delete booking #%d (seat %s)?", booking.Id, booking.Seat),
			returnState: stateProfile,
			onYes: func(m appModel) (appModel, tea.Cmd) {
				if m.profile == nil {
					return m, nil
				}
				m.pending = true
				return m, tea.Batch(deleteBookingCmd(m.profile, booking.Id), m.spinner.Tick)
			},
		}
		m.state = stateConfirm
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) nextTab() (tea.Model, tea.Cmd, bool) {
	m.status = ""
	switch m.state {
	case stateMovies:
		m.state = stateScreenings
	case stateScreenings:
		m.state = stateTop
		m.pending = true
		return m, tea.Batch(m.topMoviesCmd(), m.spinner.Tick), true
	default:
		m.state = stateMovies
	}
	return m, nil, true
}

func (m *appModel) openLogin(email string) tea.Cmd {
	if m.isBrowseState() {
		m.formReturn = m.state
	}
	m.form = newForm("Sign in",
		field{label: "Email", placeholder: "you@example.com"},
		field{label: "Password", secret: true},
	)
	m.form.set(0, email)
	m.state = stateLogin
	m.statusErr = ""
	if email != "" {
		return m.form.setFocus(1)
	}
	return nil
}

func (m *appModel) openRegister() tea.Cmd {
	m.formReturn = m.state
	m.form = newForm("Register",
		field{label: "Username"},
		field{label: "Email", placeholder: "you@example.com"},
		field{label: "Password", secret: true},
		field{label: "Confirm password", secret: true},
	)
	m.state = stateRegister
	return nil
}

func (m appModel) openProfile() (tea.Model, tea.Cmd, bool) {
	profile, err := m.app.OpenProfile()
	if err != nil {
		m.statusErr = service.Message(err)
		return m, nil, true
	}
	m.lastState = m.state
	m.profile = profile
	m.profileView = workflow.ProfileView{}
	m.bookingList.SetItems(nil)
	m.state = stateProfile
	m.pending = true
	return m, tea.Batch(loadProfileCmd(profile), m.spinner.Tick), true
}

func (m appModel) openMovieForm(movie *model.Movie) (tea.Model, tea.Cmd, bool) {
	if !m.app.Session.IsAdmin() {
		m.statusErr = "only administrators can manage movies"
		return m, nil, true
	}
	fields := editsession.MovieForm{}
	title := "New movie"
	if movie == nil {
		if err := m.app.Movies.BeginCreate(); err != nil {
			m.statusErr = service.Message(err)
			return m, nil, true
		}
	} else {
		if err := m.app.Movies.BeginEditMovie(*movie); err != nil {
			m.statusErr = service.Message(err)
			return m, nil, true
		}
		fields = m.app.Movies.Fields()
		title = "Edit movie #" + strconv.Itoa(movie.Id)
	}
	m.formReturn = m.state
	m.form = newForm(title,
		field{label: "Title"},
		field{label: "Description"},
		field{label: "Year", placeholder: strconv.Itoa(time.Now().Year())},
		field{label: "Image URL", placeholder: "https://..."},
	)
	m.form.set(0, fields.Title)
	m.form.set(1, fields.Description)
	m.form.set(2, fields.Year)
	m.form.set(3, fields.ImageURL)
	m.state = stateMovieForm
	return m, nil, true
}

func (m appModel) openScreeningForm() (tea.Model, tea.Cmd, bool) {
	if !m.app.Session.IsAdmin() {
		m.statusErr = "only administrators can manage screenings"
		return m, nil, true
	}
	if err := m.app.Screenings.BeginCreate(); err != nil {
		m.statusErr = service.Message(err)
		return m, nil, true
	}
	m.formReturn = m.state
	m.form = newForm("New screening",
		field{label: "Movie ID"},
		field{label: "Room"},
		field{label: "Time", placeholder: "2026-03-01 19:30"},
	)
	if m.movieFilter != model.AllMovies {
		m.form.set(0, strconv.Itoa(m.movieFilter))
	}
	m.state = stateScreeningForm
	return m, nil, true
}

func (m appModel) confirmDeleteMovie() (tea.Model, tea.Cmd, bool) {
	if !m.app.Session.IsAdmin() {
		m.statusErr = "only administrators can delete movies"
		return m, nil, true
	}
	item, ok := m.movieList.SelectedItem().(movieItem)
	if !ok || m.pending {
		return m, nil, true
	}
	movie := item.movie
	m.confirm = confirmation{
		prompt:      fmt.Sprintf("Delete %q? Its screenings will show as %q.", movie.Title, model.UnknownMovieTitle),
		returnState: stateMovies,
		onYes: func(m appModel) (appModel, tea.Cmd) {
			m.pending = true
			return m, tea.Batch(m.deleteMovieCmd(movie), m.spinner.Tick)
		},
	}
	m.state = stateConfirm
	return m, nil, true
}

func (m appModel) openBooking() (tea.Model, tea.Cmd, bool) {
	item, ok := m.screeningList.SelectedItem().(screeningItem)
	if !ok || m.pending {
		return m, nil, true
	}
	if !m.app.Session.Authenticated() {
		m.statusErr = "please sign in to book a seat"
		return m, nil, true
	}
	m.formReturn = stateScreenings
	m.pending = true
	return m, tea.Batch(m.openBookingCmd(item.screening.Id), m.spinner.Tick), true
}

func (m appModel) toggleDateFilter() (tea.Model, tea.Cmd, bool) {
	if !m.dateFilter.IsZero() {
		m.dateFilter = time.Time{}
		m.dateScreenings = nil
		m.syncCatalog()
		return m, nil, true
	}
	m.formReturn = m.state
	m.form = newForm("Screenings on date", field{label: "Date", placeholder: "2026-03-01"})
	value := time.Now().Format(time.DateOnly)
	if recent, err := store.LoadRecentDates(); err == nil && len(recent) > 0 {
		value = recent[0]
	}
	m.form.set(0, value)
	m.state = stateDateFilter
	return m, nil, true
}

func (m *appModel) cycleMovieFilter() {
	movies := m.app.Catalog.Movies()
	ids := make([]int, 0, len(movies)+1)
	ids = append(ids, model.AllMovies)
	for _, movie := range movies {
		ids = append(ids, movie.Id)
	}
	next := model.AllMovies
	for i, id := range ids {
		if id == m.movieFilter && i+1 < len(ids) {
			next = ids[i+1]
			break
		}
	}
	m.movieFilter = next
	m.stats = nil
	m.syncCatalog()
}

// syncCatalog rebuilds the catalog lists from the cache.
func (m *appModel) syncCatalog() {
	m.movieList.SetItems(buildMovieItems(m.app.Catalog.SearchMovies(m.search)))
	m.screeningList.SetItems(buildScreeningItems(m.visibleScreenings()))
}

func (m appModel) visibleScreenings() []model.Screening {
	if m.dateFilter.IsZero() {
		return m.app.Catalog.FilterByMovie(m.movieFilter)
	}
	if m.movieFilter == model.AllMovies {
		return m.dateScreenings
	}
	filtered := make([]model.Screening, 0, len(m.dateScreenings))
	for _, screening := range m.dateScreenings {
		if screening.MovieId == m.movieFilter {
			filtered = append(filtered, screening)
		}
	}
	return filtered
}

// handleSearchInput feeds typed text into the movie search.
func (m *appModel) handleSearchInput(msg tea.KeyMsg) bool {
	if m.state != stateMovies {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.search += string(msg.Runes)
	case tea.KeySpace:
		m.search += " "
	case tea.KeyBackspace:
		if m.search == "" {
			return false
		}
		m.search = trimLastRune(m.search)
	default:
		return false
	}
	m.movieList.SetItems(buildMovieItems(m.app.Catalog.SearchMovies(m.search)))
	m.movieList.Select(0)
	return true
}

func (m appModel) isBrowseState() bool {
	return m.state == stateMovies || m.state == stateScreenings || m.state == stateTop
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 12
	if h < 6 {
		h = 6
	}
	m.movieList.SetSize(m.width, h)
	m.screeningList.SetSize(m.width, h)
	m.topList.SetSize(m.width, h)
	m.bookingList.SetSize(m.width, h)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}
