// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/pool"
)

func initLogger(ctx *cli.Context) {
	level := log.FromVerbosity(ctx.Int(verbosityFlag.Name))
	if ctx.Bool(jsonLogsFlag.Name) {
		log.SetDefault(log.NewJSONHandlerWithLevel(os.Stdout, level))
		return
	}
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	log.SetDefault(log.NewTerminalHandler(os.Stderr, level, useColor))
}

// openDB opens the pool database, in memory unless persist is set.
func openDB(ctx *cli.Context, persist, readOnly bool) (*lvldb.LevelDB, string, error) {
	if !persist {
		db, err := lvldb.NewMem()
		return db, "memory", err
	}
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return nil, "", errors.New("unable to infer default data dir, use -data-dir to specify")
	}
	if !readOnly {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, "", errors.Wrapf(err, "create data dir [%v]", dir)
		}
	}
	path := filepath.Join(dir, "pool.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              64,
		OpenFilesCacheCapacity: 64,
		ReadOnly:               readOnly,
	})
	if err != nil {
		return nil, "", errors.Wrapf(err, "open pool database [%v]", path)
	}
	return db, path, nil
}

// seedValidators registers the configured validators the pool does not know yet.
func seedValidators(p *pool.Pool, validators []lsd.Address) error {
	registered, err := p.Validators()
	if err != nil {
		return err
	}
	known := make(map[lsd.Address]bool, len(registered))
	for _, v := range registered {
		known[v] = true
	}
	for _, v := range validators {
		if known[v] {
			continue
		}
		if err := p.AddValidator(v); err != nil {
			return errors.Wrapf(err, "register validator %v", v)
		}
		log.Info("validator registered", "address", v)
	}
	return nil
}

// serveHTTP listens on addr and serves handler until ctx is done.
func serveHTTP(ctx context.Context, addr string, handler http.Handler) (string, func() error, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	run := func() error {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
	return "http://" + listener.Addr().String(), run, nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.stakepool")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.stakepool")
		default:
			return filepath.Join(home, ".org.vechain.stakepool")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
