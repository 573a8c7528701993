package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/convertly/leadscore/internal/domain/schema"
)

func exampleVector(t *testing.T) schema.FeatureVector {
	t.Helper()
	vec, err := schema.NewValidator().Validate(schema.Example())
	if err != nil {
		t.Fatalf("example payload must validate: %v", err)
	}
	return vec
}

func TestLocalProvider(t *testing.T) {
	Convey("Given the in-process provider", t, func() {
		local := NewLocal()
		vec := exampleVector(t)

		Convey("Predictions land strictly inside (0,1)", func() {
			score, err := local.Predict(context.Background(), vec)
			So(err, ShouldBeNil)
			So(score, ShouldBeGreaterThan, 0)
			So(score, ShouldBeLessThan, 1)
		})

		Convey("The same vector always scores the same", func() {
			first, err := local.Predict(context.Background(), vec)
			So(err, ShouldBeNil)
			for i := 0; i < 10; i++ {
				again, err := local.Predict(context.Background(), vec)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, first)
			}
		})

		Convey("Stronger buying signals raise the score", func() {
			base, err := local.Predict(context.Background(), vec)
			So(err, ShouldBeNil)

			hot := schema.Example()
			hot["budget_confirmed"] = 1
			hot["timeline_confirmed"] = 1
			hot["decision_maker_contacted"] = 1
			hot["pricing_page_visits"] = 20
			hotVec, err := schema.NewValidator().Validate(hot)
			So(err, ShouldBeNil)

			hotScore, err := local.Predict(context.Background(), hotVec)
			So(err, ShouldBeNil)
			So(hotScore, ShouldBeGreaterThan, base)
		})

		Convey("It reports a stable identity and is always healthy", func() {
			id := local.Identity()
			So(id.Name, ShouldEqual, "lead-conversion-logistic")
			So(id.Version, ShouldEqual, "1.0.0")
			So(local.Healthy(context.Background()), ShouldBeTrue)
		})

		Convey("Feature importances cover every weight and sum to one", func() {
			importances := local.FeatureImportances()
			So(importances, ShouldHaveLength, schema.NumFeatures)

			total := 0.0
			for _, imp := range importances {
				So(imp, ShouldBeGreaterThan, 0)
				total += imp
			}
			So(total, ShouldAlmostEqual, 1.0, 1e-9)
		})
	})
}

func TestLocalProviderFromFile(t *testing.T) {
	Convey("Given a JSON parameter file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "params.json")

		Convey("Valid parameters override the baked-in model", func() {
			params := `{
				"name": "tuned-logistic",
				"version": "2.3.0",
				"bias": 0.5,
				"weights": {"budget_confirmed": 4.0},
				"scales": {"company_revenue": 1000000}
			}`
			So(os.WriteFile(path, []byte(params), 0o600), ShouldBeNil)

			local, err := NewLocalFromFile(path)
			So(err, ShouldBeNil)
			So(local.Identity().Name, ShouldEqual, "tuned-logistic")
			So(local.Identity().Version, ShouldEqual, "2.3.0")

			score, err := local.Predict(context.Background(), exampleVector(t))
			So(err, ShouldBeNil)
			So(score, ShouldBeGreaterThan, 0)
			So(score, ShouldBeLessThan, 1)
		})

		Convey("A missing file fails construction", func() {
			_, err := NewLocalFromFile(filepath.Join(dir, "absent.json"))
			So(err, ShouldNotBeNil)
		})

		Convey("A file without weights fails construction", func() {
			So(os.WriteFile(path, []byte(`{"bias": 1.0}`), 0o600), ShouldBeNil)
			_, err := NewLocalFromFile(path)
			So(errors.Is(err, ErrInternal), ShouldBeTrue)
		})
	})
}

func TestSageMakerProvider(t *testing.T) {
	Convey("Given a SageMaker endpoint provider", t, func() {
		vec := exampleVector(t)

		Convey("A predictions array answer is decoded", func(c C) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				var values []float64
				c.So(json.Unmarshal(body, &values), ShouldBeNil)
				c.So(values, ShouldHaveLength, schema.NumFeatures)
				w.Write([]byte(`{"predictions": [0.82]}`))
			}))
			defer srv.Close()

			p, err := NewSageMaker(srv.URL)
			So(err, ShouldBeNil)
			score, err := p.Predict(context.Background(), vec)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 0.82)
		})

		Convey("A bare numeric answer is decoded", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`0.37`))
			}))
			defer srv.Close()

			p, err := NewSageMaker(srv.URL)
			So(err, ShouldBeNil)
			score, err := p.Predict(context.Background(), vec)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 0.37)
		})

		Convey("A 503 is retried once and the second attempt wins", func() {
			var calls atomic.Int64
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				w.Write([]byte(`{"predictions": [0.5]}`))
			}))
			defer srv.Close()

			p, err := NewSageMaker(srv.URL)
			So(err, ShouldBeNil)
			score, err := p.Predict(context.Background(), vec)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 0.5)
			So(calls.Load(), ShouldEqual, 2)
		})

		Convey("A persistent 503 surfaces as unavailable after one retry", func() {
			var calls atomic.Int64
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			p, err := NewSageMaker(srv.URL)
			So(err, ShouldBeNil)
			_, err = p.Predict(context.Background(), vec)
			So(errors.Is(err, ErrEndpoint), ShouldBeTrue)
			var epErr *EndpointError
			So(errors.As(err, &epErr), ShouldBeTrue)
			So(epErr.Kind, ShouldEqual, Unavailable)
			So(calls.Load(), ShouldEqual, 2)
		})

		Convey("A 4xx answer fails immediately without a retry", func() {
			var calls atomic.Int64
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusBadRequest)
			}))
			defer srv.Close()

			p, err := NewSageMaker(srv.URL)
			So(err, ShouldBeNil)
			_, err = p.Predict(context.Background(), vec)
			var epErr *EndpointError
			So(errors.As(err, &epErr), ShouldBeTrue)
			So(epErr.Kind, ShouldEqual, InvalidResponse)
			So(calls.Load(), ShouldEqual, 1)
		})

		Convey("Malformed bodies fail immediately", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json at all`))
			}))
			defer srv.Close()

			p, err := NewSageMaker(srv.URL)
			So(err, ShouldBeNil)
			_, err = p.Predict(context.Background(), vec)
			var epErr *EndpointError
			So(errors.As(err, &epErr), ShouldBeTrue)
			So(epErr.Kind, ShouldEqual, InvalidResponse)
		})

		Convey("A slow endpoint surfaces as a timeout", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(300 * time.Millisecond)
				w.Write([]byte(`0.5`))
			}))
			defer srv.Close()

			p, err := NewSageMaker(srv.URL, WithTimeout(50*time.Millisecond))
			So(err, ShouldBeNil)
			_, err = p.Predict(context.Background(), vec)
			var epErr *EndpointError
			So(errors.As(err, &epErr), ShouldBeTrue)
			So(epErr.Kind, ShouldEqual, Timeout)
		})

		Convey("An out-of-range score passes through untouched", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"predictions": [1.7]}`))
			}))
			defer srv.Close()

			p, err := NewSageMaker(srv.URL)
			So(err, ShouldBeNil)
			score, err := p.Predict(context.Background(), vec)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 1.7)
		})

		Convey("An unreachable endpoint reports unhealthy", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			srv.Close()

			p, err := NewSageMaker(srv.URL, WithTimeout(100*time.Millisecond))
			So(err, ShouldBeNil)
			So(p.Healthy(context.Background()), ShouldBeFalse)
		})
	})
}

func TestAzureProvider(t *testing.T) {
	Convey("Given an Azure ML endpoint provider", t, func() {
		vec := exampleVector(t)

		Convey("Requests hit /score with the key, deployment and data batch", func(c C) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				c.So(r.URL.Path, ShouldEqual, "/score")
				c.So(r.Header.Get("Authorization"), ShouldEqual, "Bearer secret-key")
				c.So(r.Header.Get("azureml-model-deployment"), ShouldEqual, "blue")

				var body struct {
					Data [][]float64 `json:"data"`
				}
				c.So(json.NewDecoder(r.Body).Decode(&body), ShouldBeNil)
				c.So(body.Data, ShouldHaveLength, 1)
				c.So(body.Data[0], ShouldHaveLength, schema.NumFeatures)

				w.Write([]byte(`[0.63]`))
			}))
			defer srv.Close()

			p, err := NewAzure(srv.URL, "secret-key", WithDeployment("blue"))
			So(err, ShouldBeNil)
			score, err := p.Predict(context.Background(), vec)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 0.63)
		})

		Convey("A wrapped result answer is decoded", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"result": [0.41]}`))
			}))
			defer srv.Close()

			p, err := NewAzure(srv.URL, "secret-key")
			So(err, ShouldBeNil)
			score, err := p.Predict(context.Background(), vec)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 0.41)
		})

		Convey("An empty answer is an invalid response", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			}))
			defer srv.Close()

			p, err := NewAzure(srv.URL, "secret-key")
			So(err, ShouldBeNil)
			_, err = p.Predict(context.Background(), vec)
			var epErr *EndpointError
			So(errors.As(err, &epErr), ShouldBeTrue)
			So(epErr.Kind, ShouldEqual, InvalidResponse)
		})

		Convey("Construction requires a key", func() {
			_, err := NewAzure("http://example.invalid", "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestProviderFactory(t *testing.T) {
	Convey("Given the provider factory", t, func() {
		Convey("An empty name resolves to the local model", func() {
			p, err := New(Settings{})
			So(err, ShouldBeNil)
			So(p.Identity().Name, ShouldEqual, "lead-conversion-logistic")
		})

		Convey("Names are case-insensitive", func() {
			p, err := New(Settings{Provider: "Local"})
			So(err, ShouldBeNil)
			So(p, ShouldNotBeNil)
		})

		Convey("Remote variants require an endpoint URL", func() {
			_, err := New(Settings{Provider: NameSageMaker})
			So(err, ShouldNotBeNil)
		})

		Convey("Unknown names are rejected", func() {
			_, err := New(Settings{Provider: "vertex"})
			So(errors.Is(err, ErrUnknownProvider), ShouldBeTrue)
		})
	})
}
