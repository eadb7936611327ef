package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-adcampaign-dashboard/apiclient"
	"github.com/jrsteele09/go-adcampaign-dashboard/campaigns"
	dasherrors "github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an httptest server standing in for the campaign API
type fakeAPI struct {
	*httptest.Server
	mux *http.ServeMux

	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32

	mu      sync.Mutex
	headers map[string][]http.Header
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{
		mux:     http.NewServeMux(),
		headers: make(map[string][]http.Header),
	}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.headers[r.URL.Path] = append(api.headers[r.URL.Path], r.Header.Clone())
		api.mu.Unlock()
		api.mux.ServeHTTP(w, r)
	}))
	api.mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		api.logoutCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	t.Cleanup(api.Close)
	return api
}

func (a *fakeAPI) seen(path string) []http.Header {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]http.Header(nil), a.headers[path]...)
}

// refreshTo answers refresh calls with the given token pair
func (a *fakeAPI) refreshTo(access, refresh string) {
	a.mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		a.refreshCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]string{"accessToken": access, "refreshToken": refresh},
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requireBearer answers 403 unless the request carries the wanted token
func requireBearer(want string, calls *atomic.Int32, ok http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.Header.Get("Authorization") != "Bearer "+want {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "token expired"})
			return
		}
		ok(w, r)
	}
}

type testFixture struct {
	api         *fakeAPI
	state       *sessions.State
	client      *apiclient.Client
	metrics     *apiclient.Metrics
	endedEvents atomic.Int32
}

func setupTestFixture(t *testing.T, opts ...apiclient.Option) *testFixture {
	t.Helper()
	f := &testFixture{api: newFakeAPI(t)}

	f.state = sessions.New(store.NewInMemoryRepo(nil), sessions.WithLogoutNotifier(sessions.NotifierFunc(func(ctx context.Context) error {
		return f.client.Logout(ctx)
	})))
	f.state.Hydrate(context.Background())
	require.NoError(t, f.state.Login(sessions.LoginPayload{
		AccessToken:  "T1",
		RefreshToken: "R1",
		User:         &sessions.User{ID: "1", Name: "A"},
	}))

	f.metrics = apiclient.NewMetrics(prometheus.NewRegistry())
	opts = append([]apiclient.Option{
		apiclient.WithMetrics(f.metrics),
		apiclient.WithTimeout(5 * time.Second),
		apiclient.WithSessionEndedHook(func() { f.endedEvents.Add(1) }),
	}, opts...)
	f.client = apiclient.New(f.api.URL, f.state, opts...)
	return f
}

func listHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": []map[string]interface{}{{"id": 1, "name": "Spring"}},
	})
}

func TestCredentials_AttachesBearer(t *testing.T) {
	f := setupTestFixture(t)
	f.api.mux.HandleFunc("GET /adcampaigns", listHandler)

	list, err := f.client.ListCampaigns(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, campaigns.ID("1"), list[0].ID)

	h := f.api.seen("/adcampaigns")
	require.Len(t, h, 1)
	require.Equal(t, "Bearer T1", h[0].Get("Authorization"))
	require.NotEmpty(t, h[0].Get("X-Request-ID"))
}

func TestCredentials_PublicEndpointsNeverCarryBearer(t *testing.T) {
	f := setupTestFixture(t)
	f.api.refreshTo("T2", "")
	f.api.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{"accessToken": "T9", "user": map[string]interface{}{"id": 9}},
		})
	})
	f.api.mux.HandleFunc("POST /auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "sent"})
	})
	ctx := context.Background()

	payload, err := f.client.Login(ctx, apiclient.LoginRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "T9", payload.AccessToken)
	require.Equal(t, sessions.UserID("9"), payload.User.ID)

	msg, err := f.client.ForgotPassword(ctx, "a@b.com")
	require.NoError(t, err)
	require.Equal(t, "sent", msg)

	_, err = f.client.RefreshToken(ctx, "R1")
	require.NoError(t, err)

	for _, path := range []string{"/auth/login", "/auth/forgot-password", "/auth/refresh-token"} {
		h := f.api.seen(path)
		require.Len(t, h, 1, path)
		require.Empty(t, h[0].Get("Authorization"), path)
	}
}

func TestCredentials_StripsExplicitHeaderOnPublicPath(t *testing.T) {
	var got string
	next := apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		got = r.Header.Get("Authorization")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})
	rt := apiclient.Chain(next, apiclient.Credentials(tokenOnly("T1")))

	req, err := http.NewRequest(http.MethodPost, "http://api.test/v1/auth/register", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer stale")
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, "Bearer stale", req.Header.Get("Authorization"), "caller's request must not be modified")

	req, err = http.NewRequest(http.MethodGet, "http://api.test/v1/users/1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer explicit")
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, "Bearer explicit", got)
}

func TestCredentials_NoTokenNoHeader(t *testing.T) {
	var got []string
	next := apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		got = r.Header.Values("Authorization")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})
	rt := apiclient.Chain(next, apiclient.Credentials(tokenOnly("")))

	req, err := http.NewRequest(http.MethodGet, "http://api.test/adcampaigns", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	require.Empty(t, got)
}

type tokenOnly string

func (t tokenOnly) AccessToken() string { return string(t) }

func TestIsPublic(t *testing.T) {
	require.True(t, apiclient.IsPublic("/auth/login"))
	require.True(t, apiclient.IsPublic("/api/v2/auth/refresh-token"))
	require.False(t, apiclient.IsPublic("/auth/logout"))
	require.False(t, apiclient.IsPublic("/auth/password-reset"))
	require.False(t, apiclient.IsPublic("/adcampaigns"))
}

func TestRecovery_RefreshAndRetry(t *testing.T) {
	f := setupTestFixture(t)
	f.api.refreshTo("T2", "")
	var calls atomic.Int32
	f.api.mux.HandleFunc("GET /adcampaigns", requireBearer("T2", &calls, listHandler))

	list, err := f.client.ListCampaigns(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	h := f.api.seen("/adcampaigns")
	require.Len(t, h, 2)
	require.Equal(t, "Bearer T1", h[0].Get("Authorization"))
	require.Equal(t, "Bearer T2", h[1].Get("Authorization"))

	require.EqualValues(t, 1, f.api.refreshCalls.Load())
	require.Equal(t, "T2", f.state.AccessToken())
	require.Equal(t, "R1", f.state.RefreshToken())
	require.True(t, f.state.Snapshot().IsAuthenticated)
	require.Zero(t, f.endedEvents.Load())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Retries().WithLabelValues("recovered")))

	refreshHeaders := f.api.seen("/auth/refresh-token")
	require.Len(t, refreshHeaders, 1)
	require.Empty(t, refreshHeaders[0].Get("Authorization"))
}

func TestRecovery_RetriesOnlyOnce(t *testing.T) {
	f := setupTestFixture(t)
	f.api.refreshTo("T2", "R2")
	var calls atomic.Int32
	f.api.mux.HandleFunc("GET /adcampaigns", requireBearer("never", &calls, listHandler))

	_, err := f.client.ListCampaigns(context.Background())
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, apiclient.StatusOf(err))
	require.Equal(t, "token expired", apiclient.MessageOf(err, "fallback"))

	require.EqualValues(t, 2, calls.Load())
	require.EqualValues(t, 1, f.api.refreshCalls.Load())
	require.True(t, f.state.Snapshot().IsAuthenticated)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Retries().WithLabelValues("forbidden")))
}

func TestRecovery_ConcurrentForbiddenShareOneRefresh(t *testing.T) {
	f := setupTestFixture(t)

	var forbidden atomic.Int32
	f.api.mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		f.api.refreshCalls.Add(1)
		deadline := time.Now().Add(2 * time.Second)
		for forbidden.Load() < 2 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		// let the second caller join the pending refresh
		time.Sleep(100 * time.Millisecond)
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]string{"accessToken": "T2"}})
	})
	f.api.mux.HandleFunc("GET /adcampaigns", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T2" {
			forbidden.Add(1)
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "token expired"})
			return
		}
		listHandler(w, r)
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.ListCampaigns(context.Background())
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.EqualValues(t, 1, f.api.refreshCalls.Load())
	require.EqualValues(t, 1, f.client.Refresher().Exchanges())

	for _, h := range f.api.seen("/adcampaigns")[2:] {
		require.Equal(t, "Bearer T2", h.Get("Authorization"))
	}
}

func TestRecovery_ReplaysBody(t *testing.T) {
	f := setupTestFixture(t)
	f.api.refreshTo("T2", "")

	var bodies []string
	var mu sync.Mutex
	f.api.mux.HandleFunc("POST /adcampaigns", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		requireBearer("T2", nil, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]interface{}{"data": map[string]interface{}{"id": "c-1", "name": "Spring"}})
		})(w, r)
	})

	d := campaigns.NewDraft("instagram")
	d.Name = "Spring"
	d.Price = 30
	created, err := f.client.CreateCampaign(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, campaigns.ID("c-1"), created.ID)

	require.Len(t, bodies, 2)
	require.Equal(t, bodies[0], bodies[1])
	require.Contains(t, bodies[1], `"name":"Spring"`)

	h := f.api.seen("/adcampaigns")
	require.Equal(t, d.ID, h[0].Get("Idempotency-Key"))
	require.Equal(t, d.ID, h[1].Get("Idempotency-Key"))
}

func TestRecovery_UnauthorizedLogsOut(t *testing.T) {
	f := setupTestFixture(t)
	f.api.mux.HandleFunc("GET /adcampaigns", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "no session"})
	})

	_, err := f.client.ListCampaigns(context.Background())
	require.Equal(t, http.StatusUnauthorized, apiclient.StatusOf(err))
	require.Equal(t, "no session", apiclient.MessageOf(err, ""))

	s := f.state.Snapshot()
	require.False(t, s.IsAuthenticated)
	require.Empty(t, s.AccessToken)
	require.EqualValues(t, 1, f.endedEvents.Load())
	require.EqualValues(t, 1, f.api.logoutCalls.Load())
	require.Zero(t, f.api.refreshCalls.Load())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ForcedLogouts().WithLabelValues("unauthorized")))
}

func TestRecovery_RefreshFailureIsTerminal(t *testing.T) {
	f := setupTestFixture(t)
	f.api.mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		f.api.refreshCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token expired"})
	})
	var calls atomic.Int32
	f.api.mux.HandleFunc("GET /adcampaigns", requireBearer("T2", &calls, listHandler))

	_, err := f.client.ListCampaigns(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, dasherrors.ErrRefreshFailed)
	require.Equal(t, http.StatusForbidden, apiclient.StatusOf(err))

	require.EqualValues(t, 1, calls.Load())
	require.False(t, f.state.Snapshot().IsAuthenticated)
	require.EqualValues(t, 1, f.endedEvents.Load())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ForcedLogouts().WithLabelValues("refresh_failed")))
}

func TestRecovery_UnauthorizedOnRetryLogsOut(t *testing.T) {
	f := setupTestFixture(t)
	f.api.refreshTo("T2", "")
	f.api.mux.HandleFunc("GET /adcampaigns", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer T1" {
			writeJSON(w, http.StatusForbidden, nil)
			return
		}
		writeJSON(w, http.StatusUnauthorized, nil)
	})

	_, err := f.client.ListCampaigns(context.Background())
	require.Equal(t, http.StatusUnauthorized, apiclient.StatusOf(err))
	require.False(t, f.state.Snapshot().IsAuthenticated)
	require.EqualValues(t, 1, f.endedEvents.Load())
}

func TestRecovery_LogoutFailureDoesNotRecurse(t *testing.T) {
	f := setupTestFixture(t)
	f.api.mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.api.logoutCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, nil)
	})

	f.state.Logout(context.Background())

	require.EqualValues(t, 1, f.api.logoutCalls.Load())
	require.False(t, f.state.Snapshot().IsAuthenticated)
	require.Zero(t, f.endedEvents.Load())
}

func TestRecovery_TransportErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection refused")
	var refreshed atomic.Int32
	transport := apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if strings.HasSuffix(r.URL.Path, "/auth/refresh-token") {
			refreshed.Add(1)
		}
		return nil, boom
	})
	f := setupTestFixture(t, apiclient.WithTransport(transport))

	_, err := f.client.ListCampaigns(context.Background())
	require.ErrorIs(t, err, boom)
	require.Zero(t, apiclient.StatusOf(err))
	require.Zero(t, refreshed.Load())
	require.True(t, f.state.Snapshot().IsAuthenticated)
	require.Equal(t, "T1", f.state.AccessToken())
}

func TestAPIErrorMessage(t *testing.T) {
	f := setupTestFixture(t)
	f.api.mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Email already taken"})
	})

	_, err := f.client.Register(context.Background(), apiclient.RegisterRequest{Name: "A", Email: "a@b.com", Password: "secret"})
	require.Equal(t, http.StatusUnprocessableEntity, apiclient.StatusOf(err))
	require.Equal(t, "Email already taken", apiclient.MessageOf(err, "Registration failed"))
	require.True(t, f.state.Snapshot().IsAuthenticated, "a failed public call leaves the session alone")
}

func TestUpdateUser_Multipart(t *testing.T) {
	f := setupTestFixture(t)
	got := map[string]string{}
	f.api.mux.HandleFunc("PUT /users/1", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for k := range r.MultipartForm.Value {
			got[k] = r.FormValue(k)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"id": 1}})
	})

	err := f.client.UpdateUser(context.Background(), "1", apiclient.UserUpdate{Name: "Alice", Email: "a@b.com"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"name": "Alice", "email": "a@b.com"}, got)

	err = f.client.UpdateUser(context.Background(), "1", apiclient.UserUpdate{Name: "Alice", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "secret1", got["password"])
}

func TestGetUser(t *testing.T) {
	f := setupTestFixture(t)
	f.api.mux.HandleFunc("GET /users/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"id": 1, "name": "A", "email": "a@b.com"}})
	})

	u, err := f.client.GetUser(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, &sessions.User{ID: "1", Name: "A", Email: "a@b.com"}, u)

	_, err = f.client.GetUser(context.Background(), "")
	require.ErrorIs(t, err, dasherrors.ErrNotFound)
}

func TestCampaignOptions(t *testing.T) {
	f := setupTestFixture(t)
	f.api.mux.HandleFunc("GET /adcampaigns/options", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{
			"age_ranges":        []map[string]interface{}{{"id": 1, "name": "18-24"}},
			"engagement_ranges": []map[string]interface{}{},
			"deliverables":      []map[string]interface{}{{"id": 1, "name": "Post"}, {"id": 2, "name": "Story"}},
		}})
	})

	opts, err := f.client.CampaignOptions(context.Background())
	require.NoError(t, err)
	require.Equal(t, []campaigns.Option{{ID: 1, Name: "18-24"}}, opts.AgeRanges)
	require.Len(t, opts.Deliverables, 2)
}

func TestUploadFile(t *testing.T) {
	f := setupTestFixture(t)
	f.api.mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		b, _ := io.ReadAll(file)
		require.Equal(t, "brief.pdf", header.Filename)
		require.Equal(t, "pdf-bytes", string(b))
		writeJSON(w, http.StatusCreated, map[string]interface{}{"data": map[string]interface{}{"id": 77}})
	})

	id, err := f.client.UploadFile(context.Background(), "brief.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	require.Equal(t, "77", id)
}

func TestSearchCities(t *testing.T) {
	f := setupTestFixture(t, apiclient.WithCitySearchRate(1000))
	var calls atomic.Int32
	f.api.mux.HandleFunc("GET /locations/cities/search", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "san an", r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, []map[string]interface{}{{"id": 3, "display_name": "San Antonio, TX"}})
	})

	locs, err := f.client.SearchCities(context.Background(), "   ")
	require.NoError(t, err)
	require.Empty(t, locs)
	require.Zero(t, calls.Load())

	locs, err = f.client.SearchCities(context.Background(), " san an ")
	require.NoError(t, err)
	require.Equal(t, []campaigns.Location{{ID: "3", DisplayName: "San Antonio, TX"}}, locs)
	require.EqualValues(t, 1, calls.Load())
}

func TestRequestID_KeepsExisting(t *testing.T) {
	var got string
	next := apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		got = r.Header.Get("X-Request-ID")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})
	rt := apiclient.Chain(next, apiclient.RequestID())

	req, err := http.NewRequest(http.MethodGet, "http://api.test/", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc")
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, "abc", got)
}

func TestChainOrder(t *testing.T) {
	var order []string
	stage := func(name string) apiclient.Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}
	base := apiclient.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})

	req, err := http.NewRequest(http.MethodGet, "http://api.test/", nil)
	require.NoError(t, err)
	_, err = apiclient.Chain(base, stage("outer"), stage("inner")).RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, []string{"outer", "inner", "base"}, order)
}
