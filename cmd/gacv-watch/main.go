// Copyright 2023 The wear Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gacv-watch monitors a drop directory for GENEActiv .bin files,
// decodes each file once its size has settled and optionally records the
// run to the study database.
package main // import "github.com/go-dmti/wear/cmd/gacv-watch"

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	mail "gopkg.in/gomail.v2"

	"github.com/go-dmti/wear/geneactiv"
	"github.com/go-dmti/wear/studydb"
)

func main() {
	var (
		dir    = flag.String("dir", ".", "directory to monitor")
		freq   = flag.Duration("freq", 30*time.Second, "probing interval")
		nproc  = flag.Int("j", 2, "number of concurrent decodes")
		dbname = flag.String("db", "", "study database to record runs to (disabled if empty)")
		wspec  = flag.String("w", "0:24", "comma-separated day windows (base:period, in hours)")
	)

	flag.Parse()

	log.SetPrefix("gacv-watch: ")
	log.SetFlags(0)

	win, err := geneactiv.ParseWindows(*wspec)
	if err != nil {
		log.Fatalf("could not parse day windows %q: %+v", *wspec, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := newWatcher(*dir, *freq, *nproc, *dbname, win)
	err = w.run(ctx)
	if err != nil {
		log.Fatalf("could not watch %q: %+v", *dir, err)
	}
}

type watcher struct {
	dir   string
	freq  time.Duration
	nproc int
	db    string
	win   geneactiv.Windows

	sizes map[string]int64 // last observed size per file
	done  map[string]bool  // files already handed off for decoding

	mu     sync.Mutex
	alerts map[string]int // number of alerts sent per file
}

func newWatcher(dir string, freq time.Duration, nproc int, db string, win geneactiv.Windows) *watcher {
	if nproc < 1 {
		nproc = 1
	}
	return &watcher{
		dir:    dir,
		freq:   freq,
		nproc:  nproc,
		db:     db,
		win:    win,
		sizes:  make(map[string]int64),
		done:   make(map[string]bool),
		alerts: make(map[string]int),
	}
}

func (w *watcher) run(ctx context.Context) error {
	log.Printf("monitoring %q every %v...", w.dir, w.freq)

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(w.nproc)

	tick := time.NewTicker(w.freq)
	defer tick.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-tick.C:
			err := w.scan(ctx, grp)
			if err != nil {
				log.Printf("could not scan %q: %+v", w.dir, err)
			}
		}
	}

	return grp.Wait()
}

// scan stats the candidate files and hands off for decoding the ones
// whose size did not change since the last probe.
func (w *watcher) scan(ctx context.Context, grp *errgroup.Group) error {
	glob := filepath.Join(w.dir, "*.bin")
	files, err := filepath.Glob(glob)
	if err != nil {
		return fmt.Errorf("could not glob %q: %w", glob, err)
	}

	for _, fname := range files {
		if w.done[fname] {
			continue
		}
		fi, err := os.Stat(fname)
		if err != nil {
			log.Printf("could not stat %q: %+v", fname, err)
			continue
		}
		last, seen := w.sizes[fname]
		switch {
		case seen && fi.Size() == last && last > 0:
			w.done[fname] = true
			fname := fname
			grp.Go(func() error {
				w.process(ctx, fname)
				return nil
			})
		default:
			w.sizes[fname] = fi.Size()
		}
	}

	return nil
}

func (w *watcher) process(ctx context.Context, fname string) {
	log.Printf("decoding %q...", fname)
	data, hdr, err := geneactiv.ReadFile(fname, w.win)
	if err != nil {
		log.Printf("could not decode %q: %+v", fname, err)
		w.alert(fname, err)
		return
	}
	log.Printf("decoded %q: rate=%v Hz, pages=%d, samples=%d, days=%d",
		fname, hdr.Rate, hdr.Pages, data.Len(), len(data.Days),
	)

	if w.db == "" {
		return
	}
	err = w.record(ctx, fname, data, hdr)
	if err != nil {
		log.Printf("could not record %q: %+v", fname, err)
		w.alert(fname, err)
	}
}

func (w *watcher) record(ctx context.Context, fname string, data *geneactiv.Data, hdr geneactiv.Header) error {
	sum, err := studydb.Checksum(fname)
	if err != nil {
		return fmt.Errorf("could not checksum %q: %w", fname, err)
	}

	db, err := studydb.Open(w.db)
	if err != nil {
		return fmt.Errorf("could not open study db: %w", err)
	}
	defer db.Close()

	id, err := db.RecordRun(ctx, studydb.Run{
		File:      fname,
		Sum:       sum,
		Rate:      hdr.Rate,
		Pages:     hdr.Pages,
		Blocks:    hdr.Blocks,
		Samples:   data.Len(),
		RateFixes: hdr.RateFixes,
	})
	if err != nil {
		return fmt.Errorf("could not record run: %w", err)
	}

	err = db.RecordDays(ctx, id, data.Summaries())
	if err != nil {
		return fmt.Errorf("could not record day summaries of run %d: %w", id, err)
	}

	log.Printf("recorded %q as run %d (%d days)", fname, id, len(data.Days))
	return nil
}

func (w *watcher) alert(fname string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.alerts[fname]++

	const maxAlerts = 5
	if w.alerts[fname] < maxAlerts {
		w.alertMail(fname, err)
	}
}

var (
	alertMailUsr  = os.Getenv("MAIL_USERNAME")
	alertMailPwd  = os.Getenv("MAIL_PASSWORD")
	alertMailSrv  = os.Getenv("MAIL_SERVER")
	alertMailPort = atoi(os.Getenv("MAIL_PORT"))
	alertMailTgts = strings.Split(os.Getenv("MAIL_TGTS"), ",")
)

func (w *watcher) alertMail(fname string, alert error) {
	if alertMailUsr == "" || alertMailPwd == "" ||
		alertMailSrv == "" || alertMailPort == 0 ||
		len(alertMailTgts) == 0 {
		log.Printf("could not send mail alert: missing credentials")
		return
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", alertMailUsr)
	msg.SetHeader("Bcc", alertMailTgts...)
	msg.SetHeader("Subject", fmt.Sprintf("[gacv-watch] file alert: %q", fname))
	msg.SetBody("text/plain", fmt.Sprintf("file: %q\nerror: %+v", fname, alert))

	dial := mail.NewDialer(alertMailSrv, alertMailPort, alertMailUsr, alertMailPwd)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	err := dial.DialAndSend(msg)
	if err != nil {
		log.Printf("could not send mail alert: %+v", err)
	}
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
