package decompiler_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"go.trai.ch/ilview/internal/adapters/decompiler"
	"go.trai.ch/ilview/internal/adapters/decompiler/enginetest"
	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/core/ports/mocks"
)

func TestMain(m *testing.M) {
	if enginetest.Enabled() {
		enginetest.Main()
	}
	goleak.VerifyTestMain(m)
}

// engineConfig runs this test binary as the fake engine.
func engineConfig(t *testing.T, mode string) domain.EngineConfig {
	t.Helper()

	exe, err := os.Executable()
	require.NoError(t, err)

	return domain.EngineConfig{
		Path:            exe,
		Env:             enginetest.Env(mode),
		StartupTimeout:  5 * time.Second,
		RequestTimeout:  5 * time.Second,
		StopGracePeriod: time.Second,
	}
}

func newSession(t *testing.T, cfg domain.EngineConfig, opts ...decompiler.Option) *decompiler.Session {
	t.Helper()

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	s := decompiler.NewSession(cfg, logger, opts...)
	t.Cleanup(s.Stop)
	return s
}

func assemblyPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func TestSession_Scenario(t *testing.T) {
	s := newSession(t, engineConfig(t, ""))
	path := assemblyPath(t, "A.dll")

	desc, err := s.LoadAssembly(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, domain.AssemblyDescriptor{
		Path:            path,
		Name:            "A",
		Version:         "1.0.0.0",
		TargetFramework: ".NETStandard,Version=v2.0",
	}, desc)
	assert.Equal(t, domain.StateRunning, s.State())
	assert.NotEmpty(t, s.Generation())
	assert.NotZero(t, s.PID())

	types, err := s.ListChildren(t.Context(), domain.AssemblyKey(path))
	require.NoError(t, err)
	require.Equal(t, []domain.ChildDescriptor{
		{Name: "T", Kind: domain.KindType, Symbol: enginetest.SymbolType},
	}, types)

	members, err := s.ListChildren(t.Context(), domain.MemberKey{Assembly: path, Symbol: enginetest.SymbolType})
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "M1", members[0].Name)
	assert.Equal(t, "M2", members[1].Name)

	leaf, err := s.ListChildren(t.Context(), domain.MemberKey{Assembly: path, Symbol: enginetest.SymbolM1})
	require.NoError(t, err)
	assert.NotNil(t, leaf)
	assert.Empty(t, leaf)

	m1 := domain.MemberKey{Assembly: path, Symbol: enginetest.SymbolM1}
	code, err := s.Decompile(t.Context(), m1, domain.LanguageCSharp)
	require.NoError(t, err)
	assert.Equal(t, "public void M1()\n{\n}\n", code)

	il, err := s.Decompile(t.Context(), m1, domain.LanguageIL)
	require.NoError(t, err)
	assert.Equal(t, ".method public hidebysig instance void M1 () cil managed\n{\n\tret\n}\n", il)
}

func TestSession_LoadFailure(t *testing.T) {
	s := newSession(t, engineConfig(t, ""))

	_, err := s.LoadAssembly(t.Context(), assemblyPath(t, enginetest.MissingAssembly))
	require.ErrorIs(t, err, domain.ErrLoadFailure)
	assert.True(t, s.IsRunning(), "a rejected assembly does not take the engine down")
}

func TestSession_DecompileFailure(t *testing.T) {
	s := newSession(t, engineConfig(t, ""))
	path := assemblyPath(t, "A.dll")

	_, err := s.LoadAssembly(t.Context(), path)
	require.NoError(t, err)

	_, err = s.Decompile(t.Context(), domain.MemberKey{Assembly: path, Symbol: "M:Demo.T.Gone"}, domain.LanguageCSharp)
	require.ErrorIs(t, err, domain.ErrDecompileFailure)

	_, err = s.ListChildren(t.Context(), domain.AssemblyKey(assemblyPath(t, "B.dll")))
	require.ErrorIs(t, err, domain.ErrDecompileFailure)
}

func TestSession_RequestsDoNotStartTheEngine(t *testing.T) {
	s := newSession(t, engineConfig(t, ""))

	_, err := s.ListChildren(t.Context(), domain.AssemblyKey("A.dll"))
	require.ErrorIs(t, err, domain.ErrEngineUnavailable)
	assert.Equal(t, domain.StateStopped, s.State())
	assert.Empty(t, s.Generation())
}

func TestSession_StartupFailure(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(domain.EngineConfig) domain.EngineConfig
	}{
		{
			name: "missing executable",
			cfg: func(c domain.EngineConfig) domain.EngineConfig {
				c.Path = filepath.Join(t.TempDir(), "no-such-engine")
				return c
			},
		},
		{
			name: "exits immediately",
			cfg: func(c domain.EngineConfig) domain.EngineConfig {
				c.Env = enginetest.Env(enginetest.ModeExit)
				return c
			},
		},
		{
			name: "never ready",
			cfg: func(c domain.EngineConfig) domain.EngineConfig {
				c.Env = enginetest.Env(enginetest.ModeNoReady)
				c.StartupTimeout = 200 * time.Millisecond
				return c
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, tt.cfg(engineConfig(t, "")))

			err := s.EnsureRunning(t.Context())
			require.ErrorIs(t, err, domain.ErrStartupFailure)
			assert.False(t, s.IsRunning())
			assert.Equal(t, domain.StateStopped, s.State())
			assert.Nil(t, s.Process())
		})
	}
}

func TestSession_CancelledStartup(t *testing.T) {
	cfg := engineConfig(t, enginetest.ModeNoReady)
	cfg.StartupTimeout = time.Minute
	s := newSession(t, cfg)

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	err := s.EnsureRunning(ctx)
	require.ErrorIs(t, err, domain.ErrStartupFailure)
	assert.False(t, s.IsRunning())
	assert.Equal(t, domain.StateStopped, s.State())
}

func TestSession_CrashIsDetected(t *testing.T) {
	s := newSession(t, engineConfig(t, ""))
	path := assemblyPath(t, "A.dll")

	_, err := s.LoadAssembly(t.Context(), path)
	require.NoError(t, err)
	before := s.Generation()

	require.NoError(t, s.Process().Kill())
	require.Eventually(t, func() bool { return !s.IsRunning() }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, domain.StateCrashed, s.State())

	_, err = s.ListChildren(t.Context(), domain.AssemblyKey(path))
	require.ErrorIs(t, err, domain.ErrEngineUnavailable)

	require.NoError(t, s.EnsureRunning(t.Context()))
	assert.Equal(t, domain.StateRunning, s.State())
	assert.NotEqual(t, before, s.Generation())
}

func TestSession_CrashDuringRequest(t *testing.T) {
	s := newSession(t, engineConfig(t, ""))
	path := assemblyPath(t, "A.dll")

	_, err := s.LoadAssembly(t.Context(), path)
	require.NoError(t, err)

	_, err = s.Decompile(t.Context(), domain.MemberKey{Assembly: path, Symbol: enginetest.SymbolCrash}, domain.LanguageCSharp)
	require.ErrorIs(t, err, domain.ErrEngineUnavailable)
	require.Eventually(t, func() bool { return s.State() == domain.StateCrashed }, 5*time.Second, 10*time.Millisecond)
}

func TestSession_RestartFailsInFlightRequest(t *testing.T) {
	s := newSession(t, engineConfig(t, ""))
	path := assemblyPath(t, "A.dll")

	_, err := s.LoadAssembly(t.Context(), path)
	require.NoError(t, err)
	before := s.Generation()

	errs := make(chan error, 1)
	go func() {
		_, err := s.Decompile(t.Context(), domain.MemberKey{Assembly: path, Symbol: enginetest.SymbolHang}, domain.LanguageCSharp)
		errs <- err
	}()
	require.Eventually(t, func() bool { return s.Pending() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Restart(t.Context()))

	select {
	case err := <-errs:
		require.ErrorIs(t, err, domain.ErrEngineUnavailable)
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight request did not fail on restart")
	}
	assert.NotEqual(t, before, s.Generation())
	assert.Equal(t, domain.StateRunning, s.State())
}

func TestSession_TimeoutWedgesGeneration(t *testing.T) {
	cfg := engineConfig(t, "")
	cfg.RequestTimeout = 200 * time.Millisecond
	s := newSession(t, cfg)
	path := assemblyPath(t, "A.dll")

	_, err := s.LoadAssembly(t.Context(), path)
	require.NoError(t, err)
	before := s.Generation()

	_, err = s.Decompile(t.Context(), domain.MemberKey{Assembly: path, Symbol: enginetest.SymbolHang}, domain.LanguageCSharp)
	require.ErrorIs(t, err, domain.ErrTimeout)

	require.NoError(t, s.EnsureRunning(t.Context()))
	assert.NotEqual(t, before, s.Generation(), "a timed out generation is replaced")
}

func TestSession_MalformedResponse(t *testing.T) {
	for _, symbol := range []string{enginetest.SymbolGarbage, enginetest.SymbolBadBody} {
		t.Run(symbol, func(t *testing.T) {
			s := newSession(t, engineConfig(t, ""))
			path := assemblyPath(t, "A.dll")

			_, err := s.LoadAssembly(t.Context(), path)
			require.NoError(t, err)

			_, err = s.Decompile(t.Context(), domain.MemberKey{Assembly: path, Symbol: symbol}, domain.LanguageCSharp)
			require.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}

func TestSession_Stop(t *testing.T) {
	s := newSession(t, engineConfig(t, ""))
	s.Stop()

	require.NoError(t, s.EnsureRunning(t.Context()))
	proc := s.Process()
	require.NotNil(t, proc)

	s.Stop()
	s.Stop()
	assert.Equal(t, domain.StateStopped, s.State())
	assert.False(t, s.IsRunning())

	_, err := s.Decompile(t.Context(), domain.AssemblyKey("A.dll"), domain.LanguageCSharp)
	require.ErrorIs(t, err, domain.ErrEngineUnavailable)
}

func TestSession_StopKillsUnresponsiveEngine(t *testing.T) {
	cfg := engineConfig(t, enginetest.ModeStubborn)
	cfg.StopGracePeriod = 100 * time.Millisecond
	s := newSession(t, cfg)

	require.NoError(t, s.EnsureRunning(t.Context()))

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Equal(t, domain.StateStopped, s.State())
}

func TestSession_ConcurrentEnsureRunningSharesOneProcess(t *testing.T) {
	s := newSession(t, engineConfig(t, ""))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Go(func() {
			errs[i] = s.EnsureRunning(t.Context())
		})
	}
	wg.Wait()

	require.NoError(t, errors.Join(errs...))
	gen := s.Generation()
	require.NoError(t, s.EnsureRunning(t.Context()))
	assert.Equal(t, gen, s.Generation())
}

func TestSession_Unload(t *testing.T) {
	s := newSession(t, engineConfig(t, ""))
	path := assemblyPath(t, "A.dll")

	require.NoError(t, s.UnloadAssembly(t.Context(), path), "nothing to unload without an engine")

	_, err := s.LoadAssembly(t.Context(), path)
	require.NoError(t, err)
	require.NoError(t, s.UnloadAssembly(t.Context(), path))

	_, err = s.ListChildren(t.Context(), domain.AssemblyKey(path))
	require.ErrorIs(t, err, domain.ErrDecompileFailure)
}

func TestSession_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	s := newSession(t, engineConfig(t, ""), decompiler.WithTracerProvider(tp))
	path := assemblyPath(t, "A.dll")

	_, err := s.LoadAssembly(t.Context(), path)
	require.NoError(t, err)
	_, err = s.LoadAssembly(t.Context(), assemblyPath(t, enginetest.MissingAssembly))
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "engine.load", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("ilview.assembly", path))
	assert.Contains(t, spans[0].Attributes(), attribute.String("ilview.generation", s.Generation()))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
