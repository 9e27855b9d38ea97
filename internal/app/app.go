// Package app assembles a host process from its configuration: the logger,
// the message channel on stdin/stdout and the classifier stack.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/p00ya/voce-host/internal/classify"
	"github.com/p00ya/voce-host/internal/config"
	"github.com/p00ya/voce-host/internal/host"
	"github.com/p00ya/voce-host/internal/logging"
	"github.com/p00ya/voce-host/internal/nativemsg"
)

// Options are the process-level inputs to Open.
type Options struct {
	// ConfigPath is the TOML file to load; empty means
	// config.DefaultConfigPath().
	ConfigPath string

	Stdin  io.Reader
	Stdout io.Writer
}

// Host is an assembled host process.
type Host struct {
	Config     config.Config
	Log        zerolog.Logger
	Channel    *nativemsg.Channel
	Classifier classify.Classifier

	// Table is the domain table at the end of the classifier chain.
	Table *classify.DomainTable

	closers    []func() error
	background errgroup.Group
}

// Open loads the configuration and builds the host.
//
// Open always returns a usable Host.  When it also returns an error, the
// Host has a stderr logger and a native-order channel, which is enough to
// report the error to the browser.
func Open(opts Options) (*Host, error) {
	h := &Host{
		Config:  config.DefaultConfig(),
		Log:     logging.Fallback(),
		Channel: nativemsg.NewChannel(opts.Stdin, opts.Stdout),
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return h, err
	}
	h.Config = cfg

	log, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	h.Log = log
	h.closers = append(h.closers, closeLog)
	if err != nil {
		// Logging problems are not worth failing the browser's request.
		h.Log.Warn().Err(err).Msg("logging setup")
	}

	order, err := nativemsg.ParseByteOrder(cfg.ByteOrder)
	if err != nil {
		return h, err
	}
	if !nativemsg.IsNative(order) {
		h.Log.Warn().Str("byte_order", cfg.ByteOrder).Msg("header byte order differs from this platform")
	}
	h.Channel = nativemsg.NewChannel(opts.Stdin, opts.Stdout,
		nativemsg.WithByteOrder(order),
		nativemsg.WithMaxInbound(uint32(cfg.MaxInboundBytes)),
		nativemsg.WithMaxOutbound(uint32(cfg.MaxOutboundBytes)),
	)

	if err := h.buildClassifier(); err != nil {
		return h, err
	}
	return h, nil
}

// buildClassifier wires predictor, rules and domain table into a chain,
// behind the configured cache.
func (h *Host) buildClassifier() error {
	cc := h.Config.Classifier

	table := classify.DefaultDomainTable()
	if cc.DomainsFile != "" {
		t, err := classify.LoadDomainTable(cc.DomainsFile)
		if err != nil {
			return fmt.Errorf("domain table: %w", err)
		}
		table = t
	}
	if cc.DefaultCategory != "" {
		table.SetDefault(cc.DefaultCategory)
	}
	h.Table = table

	var links []classify.Named
	if len(cc.Command) > 0 {
		cmd, err := classify.NewCommand(cc.Command, cc.CommandTimeout)
		if err != nil {
			return err
		}
		cmd.Dir = cc.CommandDir
		cmd.Retries = uint64(cc.CommandRetries)
		links = append(links, classify.Named{Name: "predictor", Classifier: cmd})
	}
	if len(cc.Rules) > 0 {
		rules := make([]classify.Rule, 0, len(cc.Rules))
		for _, r := range cc.Rules {
			rules = append(rules, classify.Rule{Category: r.Category, Expr: r.Expr})
		}
		compiled, err := classify.NewRules(rules)
		if err != nil {
			return fmt.Errorf("classifier rules: %w", err)
		}
		links = append(links, classify.Named{Name: "rules", Classifier: compiled})
	}
	links = append(links, classify.Named{Name: "domains", Classifier: table})

	var c classify.Classifier = table
	if len(links) > 1 {
		c = classify.NewChain(h.Log, links...)
	}

	switch h.Config.Cache.Backend {
	case config.CacheMemory:
		c = classify.NewCached(c, classify.NewMemoryCache(h.Config.Cache.TTL), h.Log)
	case config.CacheRedis:
		rc := classify.NewRedisCache(classify.RedisOptions{
			Address:  h.Config.Cache.RedisAddr,
			Password: h.Config.Cache.RedisPassword,
			DB:       h.Config.Cache.RedisDB,
			TTL:      h.Config.Cache.TTL,
		})
		h.closers = append(h.closers, rc.Close)
		c = classify.NewCached(c, rc, h.Log)
	}

	h.Classifier = c
	h.Log.Debug().
		Int("classifiers", len(links)).
		Int("domains", table.Len()).
		Str("cache", h.Config.Cache.Backend).
		Msg("classifier ready")
	return nil
}

// Dispatcher returns a dispatcher over the host's channel and classifier.
func (h *Host) Dispatcher(opts ...host.Option) *host.Dispatcher {
	base := []host.Option{
		host.WithLogger(h.Log),
		host.WithClassifier(h.Classifier),
	}
	return host.New(h.Channel, append(base, opts...)...)
}

// CheckCaller returns host.ErrCallerNotAllowed unless the extension named
// by args may use this host.
func (h *Host) CheckCaller(args []string) (host.Caller, error) {
	caller := host.ParseCaller(args)
	if !caller.Allowed(h.Config.AllowedCallers) {
		return caller, fmt.Errorf("%w: %q", host.ErrCallerNotAllowed, caller.ID)
	}
	return caller, nil
}

// WatchDomains keeps the domain table in sync with its file until ctx is
// done.  It does nothing without a domains file or when watching is off.
// Requests are still answered from the loaded table if the watch cannot be
// set up; Close reports why.
func (h *Host) WatchDomains(ctx context.Context) {
	cc := h.Config.Classifier
	if cc.DomainsFile == "" || !cc.WatchDomains || h.Table == nil {
		return
	}

	w := classify.NewTableWatcher(cc.DomainsFile, h.Table, h.Log)
	h.background.Go(func() error {
		if err := w.Run(ctx); err != nil {
			h.Log.Warn().Err(err).Str("path", cc.DomainsFile).Msg("not watching domain table")
			return fmt.Errorf("watching %s: %w", cc.DomainsFile, err)
		}
		return nil
	})
}

// Close waits for background work started by WatchDomains, whose context
// must already be done, and releases the host's resources.
func (h *Host) Close() error {
	var errs []error
	if err := h.background.Wait(); err != nil {
		errs = append(errs, err)
	}
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return errors.Join(errs...)
}
