package xposedornot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEmail_Breaches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/check-email/jean.dupont@gmail.com", r.URL.Path)
		fmt.Fprint(w, `{"breaches_details":[
			{"breach":"LinkedIn","domain":"linkedin.com","breachdate":"2012-05-05","xposed_data":"Email;Password"},
			{"breach":"Collection1","domain":"","breachdate":"2019-01-07","xposed_data":"Email;Password"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	breaches, err := c.CheckEmail(context.Background(), "jean.dupont@gmail.com")
	require.NoError(t, err)

	require.Len(t, breaches, 2)
	assert.Equal(t, Breach{
		Name:        "LinkedIn",
		Domain:      "linkedin.com",
		BreachDate:  "2012-05-05",
		ExposedData: "Email;Password",
	}, breaches[0])
}

func TestCheckEmail_NotFoundMeansClean(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"Error":"Not found"}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	breaches, err := c.CheckEmail(context.Background(), "clean@example.com")
	require.NoError(t, err)
	assert.Empty(t, breaches)
}

func TestCheckEmail_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "slow down")
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.CheckEmail(context.Background(), "jean.dupont@gmail.com")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "slow down", apiErr.Body)
}
