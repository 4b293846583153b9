// Package ui holds the collaborators the presenter and form controller use
// to move between views and talk to the user.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Navigator moves the user between views.
type Navigator interface {
	ToList()
	ToLogin()
	ToAdd()
	ToEdit(id int)
}

// Prompter asks yes/no questions and shows alerts.
type Prompter interface {
	Confirm(msg string) bool
	Alert(msg string)
}

type Route string

const (
	RouteNone  Route = ""
	RouteList  Route = "/todos"
	RouteLogin Route = "/login"
	RouteAdd   Route = "/todos/add"
	RouteEdit  Route = "/todos/edit"
)

// Router records where the user was last sent.
type Router struct {
	mu     sync.Mutex
	route  Route
	editID int
}

func (r *Router) ToList()  { r.set(RouteList, 0) }
func (r *Router) ToLogin() { r.set(RouteLogin, 0) }
func (r *Router) ToAdd()   { r.set(RouteAdd, 0) }

func (r *Router) ToEdit(id int) { r.set(RouteEdit, id) }

func (r *Router) set(route Route, id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route = route
	r.editID = id
}

// Current returns the last destination and, for RouteEdit, the task id.
func (r *Router) Current() (Route, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route, r.editID
}

// Terminal is a Prompter bound to a line-oriented input and output.
type Terminal struct {
	in        *bufio.Reader
	out       io.Writer
	AssumeYes bool
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Confirm accepts y or yes, case-insensitively. Anything else, including
// end of input, is a no.
func (t *Terminal) Confirm(msg string) bool {
	if t.AssumeYes {
		return true
	}
	fmt.Fprintf(t.out, "%s [y/N] ", msg)
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (t *Terminal) Alert(msg string) {
	fmt.Fprintf(t.out, "! %s\n", msg)
}

// ErrNotLoggedIn is returned by RequireSession when nobody is logged in.
var ErrNotLoggedIn = errors.New("not logged in")

// SessionChecker reports whether a session is active.
type SessionChecker interface {
	IsLoggedIn() bool
}

// RequireSession guards protected views: without a session it routes to
// login and returns ErrNotLoggedIn.
func RequireSession(s SessionChecker, nav Navigator) error {
	if s.IsLoggedIn() {
		return nil
	}
	nav.ToLogin()
	return ErrNotLoggedIn
}
