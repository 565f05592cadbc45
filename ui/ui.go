// Package ui serves a live, auto-refreshing dashboard of the process
// table, the same html/template-plus-net/http shape as the teacher's ui
// package, reading from a mutex-guarded snapshot instead of a cached
// plib.Processes map.
package ui

import (
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gokernel/coresched/internal/ptable"
	"github.com/gokernel/coresched/internal/sched"
	"github.com/sirupsen/logrus"
)

const rootPath = "/"

// Server renders a single page showing the current process table. Every
// request takes a fresh Kernel.Snapshot rather than caching it, since
// snapshotting is cheap and the dashboard's whole purpose is freshness.
type Server struct {
	kernel *sched.Kernel
	mu     sync.Mutex
	tmpl   *template.Template
}

type viewData struct {
	Policy      string
	Tick        int64
	LastRefresh time.Time
	Processes   []ptable.Process
}

// New returns a Server bound to kernel.
func New(kernel *sched.Kernel) *Server {
	tmpl := template.Must(template.New("dashboard").Parse(pageHeader + processesView + pageFooter))
	return &Server{kernel: kernel, tmpl: tmpl}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := viewData{
		Policy:      s.kernel.PolicyName(),
		Tick:        s.kernel.Clock().Now(),
		LastRefresh: time.Now(),
		Processes:   s.kernel.Snapshot(),
	}
	if err := s.tmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListenAndServe blocks serving the dashboard at addr.
func (s *Server) ListenAndServe(addr string, log *logrus.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc(rootPath, s.handleRoot)
	log.WithField("addr", addr).Info("serving dashboard")
	return http.ListenAndServe(addr, mux)
}
