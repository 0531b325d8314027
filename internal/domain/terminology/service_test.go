package terminology

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehr/namaste/internal/platform/fallback"
)

type observed struct {
	name   string
	source fallback.Source
	class  fallback.Class
}

type recorder struct {
	mu    sync.Mutex
	calls []observed
}

func (r *recorder) observe(name string, source fallback.Source, class fallback.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, observed{name, source, class})
}

func (r *recorder) last() observed {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return observed{}
	}
	return r.calls[len(r.calls)-1]
}

// registryServer counts requests and delegates to handler.
func registryServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newServiceFor(url string, timeout time.Duration, rec *recorder) *Service {
	client := NewRegistryClient(url, "test-key", time.Second)
	opts := []Option{}
	if rec != nil {
		opts = append(opts, WithObserver(rec.observe))
	}
	return NewService(client, timeout, zerolog.Nop(), opts...)
}

// unreachableURL returns the address of a server that has already shut down.
func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestService_Search_ShortTermSkipsRegistry(t *testing.T) {
	srv, hits := registryServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	svc := newServiceFor(srv.URL, time.Second, nil)

	for _, term := range []string{"", " ", "a", " j ", "\tम\n"} {
		res, err := svc.Search(context.Background(), term)
		require.NoError(t, err, "term %q", term)
		assert.Empty(t, res.Entries, "term %q", term)
		assert.NotNil(t, res.Entries)
		assert.Equal(t, SourceNone, res.Source)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestService_Search_TwoRunesReachRegistry(t *testing.T) {
	srv, hits := registryServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	svc := newServiceFor(srv.URL, time.Second, nil)

	res, err := svc.Search(context.Background(), "ji")
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Equal(t, SourceRegistry, res.Source)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestService_Search_RegistrySuccess(t *testing.T) {
	var gotTerm string
	srv, _ := registryServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotTerm = r.URL.Query().Get("term")
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"id":           "reg-9",
			"namaste_code": " NAM900 ",
			"namaste_name": "Pandu (Anaemia)",
			"icd_code":     "D64.9",
			"icd_name":     "Anaemia unspecified",
			"category":     "Blood",
		}})
	})
	rec := &recorder{}
	svc := newServiceFor(srv.URL, time.Second, rec)

	res, err := svc.Search(context.Background(), "  pandu ")
	require.NoError(t, err)
	assert.Equal(t, "pandu", gotTerm)
	assert.Equal(t, SourceRegistry, res.Source)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "NAM900", res.Entries[0].NamasteCode)
	assert.Equal(t, []string{DefaultTreatmentApproach}, res.Entries[0].TreatmentApproaches)
	assert.Equal(t, observed{"registry.search", fallback.SourceRemote, fallback.ClassNone}, rec.last())
}

func TestService_Search_UnreachableEqualsMatch(t *testing.T) {
	svc := newServiceFor(unreachableURL(t), time.Second, nil)

	for _, term := range []string{"diabetes", "fever", "ar", "दमा", "zzz", "HEART"} {
		res, err := svc.Search(context.Background(), term)
		require.NoError(t, err, "term %q", term)
		assert.Equal(t, SourceFallback, res.Source)
		assert.Equal(t, Match(term, FallbackCorpus()), res.Entries, "term %q", term)
	}
}

func TestService_Search_TwoRunesAgainstFallback(t *testing.T) {
	svc := newServiceFor(unreachableURL(t), time.Second, nil)

	// "ji" is long enough to search but no bundled entry contains it.
	res, err := svc.Search(context.Background(), "ji")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, res.Source)
	assert.NotNil(t, res.Entries)
	assert.Empty(t, res.Entries)
	assert.Equal(t, Match("ji", FallbackCorpus()), res.Entries)
}

func TestService_Search_DiabetesFallback(t *testing.T) {
	svc := newServiceFor(unreachableURL(t), time.Second, nil)

	res, err := svc.Search(context.Background(), "diabetes")
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "Madhumeha (Diabetes Mellitus)", res.Entries[0].NamasteName)
	assert.Equal(t, "E11.9", res.Entries[0].ICDCode)
}

func TestService_Search_FailureClasses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		class   fallback.Class
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			class: fallback.ClassStatus,
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			class: fallback.ClassStatus,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>tunnel offline</html>`))
			},
			class: fallback.ClassMalformed,
		},
		{
			name: "null body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`null`))
			},
			class: fallback.ClassMalformed,
		},
		{
			name: "entries without codes",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[{}]`))
			},
			class: fallback.ClassMalformed,
		},
		{
			name: "slow registry",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			class: fallback.ClassTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := registryServer(t, tt.handler)
			rec := &recorder{}
			svc := newServiceFor(srv.URL, 50*time.Millisecond, rec)

			res, err := svc.Search(context.Background(), "fever")
			require.NoError(t, err)
			assert.Equal(t, SourceFallback, res.Source)
			assert.Equal(t, Match("fever", FallbackCorpus()), res.Entries)
			assert.Equal(t, observed{"registry.search", fallback.SourceLocal, tt.class}, rec.last())
		})
	}
}

func TestService_Search_UnconfiguredMakesNoCall(t *testing.T) {
	srv, hits := registryServer(t, func(w http.ResponseWriter, r *http.Request) {})
	client := NewRegistryClient(srv.URL, "", time.Second)
	rec := &recorder{}
	svc := NewService(client, time.Second, zerolog.Nop(), WithObserver(rec.observe))

	res, err := svc.Search(context.Background(), "cough")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, []string{"NAM006"}, namasteCodes(res.Entries))
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
	assert.Equal(t, fallback.ClassUnconfigured, rec.last().class)
}

func TestService_Search_CancelledCallerGetsError(t *testing.T) {
	svc := newServiceFor(unreachableURL(t), time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Search(ctx, "fever")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Search_CustomCorpus(t *testing.T) {
	corpus := []Entry{{ID: "c-1", NamasteCode: "X1", NamasteName: "Vatavyadhi", ICDCode: "G99"}}
	client := NewRegistryClient("", "", time.Second)
	svc := NewService(client, time.Second, zerolog.Nop(), WithCorpus(corpus), WithObserver(func(string, fallback.Source, fallback.Class) {}))

	res, err := svc.Search(context.Background(), "vata")
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, []string{DefaultTreatmentApproach}, res.Entries[0].TreatmentApproaches)
	assert.Len(t, svc.Fallback(), 1)
}

func TestService_Submit(t *testing.T) {
	payload := &DiagnosisPayload{PatientID: "p-1", NamasteCode: "NAM002", ICDCode: "R50.9", Severity: "mild"}

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    SubmitResult
	}{
		{
			name: "accepted",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"accepted":true,"message":"recorded"}`))
			},
			want: SubmitResult{Accepted: true, Message: "recorded"},
		},
		{
			name: "legacy success shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
			},
			want: SubmitResult{Accepted: true, Message: "ok"},
		},
		{
			name: "refused",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"accepted":false,"message":"duplicate"}`))
			},
			want: SubmitResult{Accepted: false, Message: "duplicate"},
		},
		{
			name: "server error soft-accepts",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: SubmitResult{Accepted: true, Offline: true, Message: OfflineSubmitMessage},
		},
		{
			name: "no verdict soft-accepts",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"message":"hm"}`))
			},
			want: SubmitResult{Accepted: true, Offline: true, Message: OfflineSubmitMessage},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := registryServer(t, tt.handler)
			svc := newServiceFor(srv.URL, time.Second, &recorder{})

			res, err := svc.Submit(context.Background(), payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *res)
		})
	}
}

type nilRegistry struct{}

func (nilRegistry) Search(context.Context, string) ([]Entry, error) { return nil, nil }
func (nilRegistry) SubmitDiagnosis(context.Context, *DiagnosisPayload) (*SubmitResult, error) {
	return nil, nil
}

func TestService_Submit_NilResultSoftAccepts(t *testing.T) {
	svc := NewService(nilRegistry{}, time.Second, zerolog.Nop(), WithObserver(func(string, fallback.Source, fallback.Class) {}))

	res, err := svc.Submit(context.Background(), &DiagnosisPayload{})
	require.NoError(t, err)
	assert.True(t, res.Offline)

	search, err := svc.Search(context.Background(), "xyz")
	require.NoError(t, err)
	assert.NotNil(t, search.Entries)
	assert.Equal(t, SourceRegistry, search.Source)
}

type panicRegistry struct{ nilRegistry }

func (panicRegistry) Search(context.Context, string) ([]Entry, error) { panic("boom") }

func TestService_Search_PanicFallsBack(t *testing.T) {
	rec := &recorder{}
	svc := NewService(panicRegistry{}, time.Second, zerolog.Nop(), WithObserver(rec.observe))

	res, err := svc.Search(context.Background(), "asthma")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, []string{"NAM007"}, namasteCodes(res.Entries))
	assert.Equal(t, fallback.ClassPanic, rec.last().class)
}

func TestService_Resolve_FallbackEntryIsCanonicalised(t *testing.T) {
	svc := NewService(nilRegistry{}, time.Second, zerolog.Nop())

	got, err := svc.Resolve(context.Background(), Entry{ID: "mock-2", NamasteCode: "FAKE", ICDCode: "Z99"})
	require.NoError(t, err)
	assert.Equal(t, "NAM002", got.NamasteCode)
	assert.Equal(t, "R50.9", got.ICDCode)
}

func TestService_Resolve_RegistrySelection(t *testing.T) {
	var gotTerm string
	srv, _ := registryServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotTerm = r.URL.Query().Get("term")
		_, _ = w.Write([]byte(`[{"id":"reg-1","namaste_code":"N1","namaste_name":"Pandu","icd_code":"X1","treatment_approach":["ayurvedic"]}]`))
	})
	svc := newServiceFor(srv.URL, time.Second, &recorder{})

	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{"confirmed", Entry{ID: "reg-1", NamasteCode: " N1 ", NamasteName: "Pandu", ICDCode: "X1"}, nil},
		{"forged icd code", Entry{ID: "reg-1", NamasteCode: "N1", NamasteName: "Pandu", ICDCode: "Z99"}, ErrUnverifiedEntry},
		{"other id", Entry{ID: "reg-2", NamasteCode: "N1", NamasteName: "Pandu", ICDCode: "X1"}, ErrUnverifiedEntry},
		{"no name", Entry{ID: "reg-1", NamasteCode: "N1", ICDCode: "X1"}, ErrUnverifiedEntry},
		{"missing code", Entry{ID: "reg-1", NamasteCode: "N1", NamasteName: "Pandu"}, ErrIncompleteEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Resolve(context.Background(), tt.entry)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Pandu", gotTerm)
			assert.Equal(t, "N1", got.NamasteCode)
			assert.Equal(t, []string{"ayurvedic"}, got.TreatmentApproaches)
		})
	}
}

func TestService_Resolve_OfflineRegistryConfirmsNothing(t *testing.T) {
	svc := newServiceFor(unreachableURL(t), time.Second, &recorder{})

	_, err := svc.Resolve(context.Background(), Entry{ID: "reg-1", NamasteCode: "N1", NamasteName: "Pandu", ICDCode: "X1"})
	assert.ErrorIs(t, err, ErrUnverifiedEntry)
}

func TestService_Resolve_CancelledCallerGetsError(t *testing.T) {
	svc := newServiceFor(unreachableURL(t), time.Second, &recorder{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Resolve(ctx, Entry{ID: "reg-1", NamasteCode: "N1", NamasteName: "Pandu", ICDCode: "X1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnverifiedEntry)
}

func TestService_Fallback_ReturnsCopy(t *testing.T) {
	svc := NewService(nilRegistry{}, 0, zerolog.Nop())
	a := svc.Fallback()
	a[0] = Entry{}
	assert.Equal(t, "mock-1", svc.Fallback()[0].ID)
}
