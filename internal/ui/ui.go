// Package ui holds the user facing side effects client components trigger:
// transient notifications and navigation.
package ui

import (
	"fmt"
	"io"
	"sync"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient message shown to the user.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

type Notifier interface {
	Notify(n Notification)
}

// Navigator moves the user between views. Navigate changes the in-app route;
// Redirect leaves the application for an external URL.
type Navigator interface {
	Navigate(path string)
	Redirect(url string)
}

// Terminal prints notifications and navigation to a writer.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
	// OnNavigate, when set, is called after a route change is printed.
	OnNavigate func(path string)
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Notify(n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	marker := "*"
	if n.Variant == VariantDestructive {
		marker = "!"
	}
	if n.Description != "" {
		fmt.Fprintf(t.out, "[%s] %s: %s\n", marker, n.Title, n.Description)
		return
	}
	fmt.Fprintf(t.out, "[%s] %s\n", marker, n.Title)
}

func (t *Terminal) Navigate(path string) {
	t.mu.Lock()
	fmt.Fprintf(t.out, "-> %s\n", path)
	hook := t.OnNavigate
	t.mu.Unlock()
	if hook != nil {
		hook(path)
	}
}

func (t *Terminal) Redirect(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "Abra no navegador: %s\n", url)
}

// Reporting forwards every notification to next and passes destructive ones
// to report as well.
func Reporting(next Notifier, report func(Notification)) Notifier {
	return &reportingNotifier{next: next, report: report}
}

type reportingNotifier struct {
	next   Notifier
	report func(Notification)
}

func (r *reportingNotifier) Notify(n Notification) {
	r.next.Notify(n)
	if n.Variant == VariantDestructive && r.report != nil {
		r.report(n)
	}
}

// Recorder keeps every notification and navigation it receives. Tests use it
// in place of a real surface.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
	paths         []string
	redirects     []string
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *Recorder) Redirect(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, url)
}

func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *Recorder) Redirects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.redirects...)
}

// Last returns the most recent notification, or the zero value.
func (r *Recorder) Last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}
	}
	return r.notifications[len(r.notifications)-1]
}
