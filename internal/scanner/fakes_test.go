package scanner

import (
	"context"
	"errors"
	"sync/atomic"

	"phishguard/internal/scanner/tools"
	"phishguard/pkg/models"
)

var errUpstream = errors.New("upstream unavailable")

type fakeResolver struct {
	answers map[uint16][]tools.Answer
	err     error
	calls   atomic.Int32
}

func (f *fakeResolver) Query(ctx context.Context, name string, qtype uint16) ([]tools.Answer, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.answers[qtype]; ok {
		return a, nil
	}
	return []tools.Answer{}, nil
}

type fakeGeo struct {
	info  tools.GeoInfo
	err   error
	calls atomic.Int32
}

func (f *fakeGeo) Lookup(ctx context.Context, ip, host string) (tools.GeoInfo, error) {
	f.calls.Add(1)
	return f.info, f.err
}

type fakeWHOIS struct {
	rec   tools.WHOISRecord
	err   error
	block bool
	calls atomic.Int32
}

func (f *fakeWHOIS) Lookup(ctx context.Context, domain string) (tools.WHOISRecord, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return tools.WHOISRecord{}, ctx.Err()
	}
	return f.rec, f.err
}

type fakePageSpeed struct {
	perf   *models.Performance
	err    error
	panics bool
	calls  atomic.Int32
}

func (f *fakePageSpeed) Run(ctx context.Context, target string) (*models.Performance, error) {
	f.calls.Add(1)
	if f.panics {
		panic("pagespeed exploded")
	}
	return f.perf, f.err
}

type fakeCerts struct {
	info tools.CertInfo
	err  error
}

func (f *fakeCerts) Inspect(ctx context.Context, host string) (tools.CertInfo, error) {
	return f.info, f.err
}

type fakeBreaches struct {
	breaches models.Breaches
	err      error
	panics   bool
	calls    atomic.Int32
}

func (f *fakeBreaches) Lookup(ctx context.Context, email string) (models.Breaches, error) {
	f.calls.Add(1)
	if f.panics {
		panic("breach lookup exploded")
	}
	return f.breaches, f.err
}

type fakeValidator struct {
	res   tools.ValidationResult
	err   error
	calls atomic.Int32
}

func (f *fakeValidator) Validate(ctx context.Context, email string) (tools.ValidationResult, error) {
	f.calls.Add(1)
	return f.res, f.err
}

type fakeReputation struct {
	info  models.DomainInfo
	err   error
	calls atomic.Int32
}

func (f *fakeReputation) Lookup(ctx context.Context, domain string) (models.DomainInfo, error) {
	f.calls.Add(1)
	return f.info, f.err
}

type fakeFraud struct {
	score tools.FraudScore
	err   error
	calls atomic.Int32
}

func (f *fakeFraud) Score(ctx context.Context, email string) (tools.FraudScore, error) {
	f.calls.Add(1)
	return f.score, f.err
}

type fakeDisposable struct {
	disposable bool
	err        error
	calls      atomic.Int32
}

func (f *fakeDisposable) IsDisposable(ctx context.Context, domain string) (bool, error) {
	f.calls.Add(1)
	return f.disposable, f.err
}
