package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/frontier/internal/analysisconfig"
	"github.com/wonny/frontier/internal/contracts"
	"github.com/wonny/frontier/internal/pricedata"
	"github.com/wonny/frontier/pkg/logger"
)

// ErrUnknownPreset is returned for a preset name not in the config
var ErrUnknownPreset = errors.New("unknown preset")

// Request selects a portfolio and window for one analysis.
// Exactly one of Preset, Tickers/Weights or Holdings is used, in that order.
type Request struct {
	Preset   string                   `json:"preset,omitempty"`
	Tickers  string                   `json:"tickers,omitempty"` // "AAPL,MSFT"
	Weights  string                   `json:"weights,omitempty"` // "0.6,0.4"
	Holdings []analysisconfig.Holding `json:"holdings,omitempty"`

	From string `json:"from,omitempty"` // YYYY-MM-DD, 기본값 lookback_start
	To   string `json:"to,omitempty"`   // YYYY-MM-DD, 기본값 오늘

	Benchmark    *string  `json:"benchmark,omitempty"` // "" = 벤치마크 없음
	RiskFreeRate *float64 `json:"risk_free_rate,omitempty"`
	Method       string   `json:"method,omitempty"`
}

// Service resolves requests against the analysis config, loads prices
// and runs the pipeline
// ⭐ SSOT: CLI/API/스케줄러 모두 이 서비스를 통해 분석 실행
type Service struct {
	cfg      *analysisconfig.Config
	hash     string
	provider pricedata.Provider
	runner   *Runner
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates a service. cfg must already be validated.
func NewService(cfg *analysisconfig.Config, provider pricedata.Provider, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	hash, err := analysisconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash analysis config: %w", err)
	}
	return &Service{
		cfg:      cfg,
		hash:     hash,
		provider: provider,
		runner:   NewRunner(log),
		logger:   log,
		now:      time.Now,
	}, nil
}

// Config returns the analysis config the service runs with
func (s *Service) Config() *analysisconfig.Config {
	return s.cfg
}

// Analyze runs one analysis end to end
func (s *Service) Analyze(ctx context.Context, req Request) (*Report, error) {
	preset, err := s.resolvePortfolio(req)
	if err != nil {
		return nil, err
	}

	from, to, err := s.window(req)
	if err != nil {
		return nil, err
	}

	opts, err := s.options(req)
	if err != nil {
		return nil, err
	}

	benchmark := s.cfg.Analysis.Benchmark
	if req.Benchmark != nil {
		benchmark = strings.ToUpper(strings.TrimSpace(*req.Benchmark))
	}

	tickers := preset.Tickers()
	if benchmark != "" {
		tickers = append(tickers, benchmark)
	}

	s.logger.WithFields(map[string]interface{}{
		"portfolio": preset.Name,
		"tickers":   tickers,
		"from":      from.Format(analysisconfig.DateLayout),
		"to":        to.Format(analysisconfig.DateLayout),
	}).Info("Loading prices")

	series, err := pricedata.FetchAll(ctx, s.provider, tickers, from, to)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}

	in := Input{
		Portfolio: preset.Name,
		Assets:    series[:len(preset.Holdings)],
		Weights:   preset.Weights(),
		Options:   opts,
	}
	if benchmark != "" {
		in.Benchmark = &series[len(series)-1]
	}

	report, err := s.runner.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	report.ConfigHash = s.hash
	return report, nil
}

func (s *Service) resolvePortfolio(req Request) (*analysisconfig.Preset, error) {
	switch {
	case req.Preset != "":
		p, ok := s.cfg.Preset(req.Preset)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, req.Preset)
		}
		return p, nil
	case req.Tickers != "" || req.Weights != "":
		return analysisconfig.ParseManual(req.Tickers, req.Weights)
	default:
		return analysisconfig.NewCustom(req.Holdings)
	}
}

func (s *Service) window(req Request) (time.Time, time.Time, error) {
	from, err := s.cfg.Analysis.StartDate()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if req.From != "" {
		if from, err = time.Parse(analysisconfig.DateLayout, req.From); err != nil {
			return time.Time{}, time.Time{}, analysisconfig.ValidationError{Field: "from", Message: "must be YYYY-MM-DD"}
		}
	}

	to := contracts.TruncateDay(s.now())
	if req.To != "" {
		if to, err = time.Parse(analysisconfig.DateLayout, req.To); err != nil {
			return time.Time{}, time.Time{}, analysisconfig.ValidationError{Field: "to", Message: "must be YYYY-MM-DD"}
		}
	}

	if !to.After(from) {
		return time.Time{}, time.Time{}, analysisconfig.ValidationError{Field: "to", Message: "must be after from"}
	}
	return from, to, nil
}

func (s *Service) options(req Request) (Options, error) {
	opts, err := OptionsFromConfig(s.cfg.Analysis)
	if err != nil {
		return Options{}, err
	}

	if req.RiskFreeRate != nil {
		opts.RiskFreeRate = *req.RiskFreeRate
	}
	if req.Method != "" {
		m, err := contracts.ParseMethod(req.Method)
		if err != nil {
			return Options{}, analysisconfig.ValidationError{Field: "method", Message: err.Error()}
		}
		opts.Method = m
	}
	return opts, nil
}
