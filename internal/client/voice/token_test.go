package voice

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func tokenServer(t *testing.T, status int, body gin.H) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/voice/token", func(c *gin.Context) {
		var req tokenRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ChannelID != "v" || req.UserID != me.ID || req.Username != me.Username {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		c.SetCookie("ct", "client-1", 3600, "/", "", false, true)
		c.JSON(status, body)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPTokenSource(t *testing.T) {
	srv := tokenServer(t, http.StatusOK, gin.H{"token": "jwt", "url": "wss://sfu"})
	jar, _ := cookiejar.New(nil)
	src := NewHTTPTokenSource(srv.URL+"/", &http.Client{Jar: jar})

	got, err := src.Token(context.Background(), "v", me)
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != "jwt" || got.URL != "wss://sfu" {
		t.Fatalf("creds = %+v", got)
	}
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if cookies := jar.Cookies(req.URL); len(cookies) != 1 || cookies[0].Value != "client-1" {
		t.Fatalf("cookies = %v", cookies)
	}
}

func TestHTTPTokenSourceError(t *testing.T) {
	srv := tokenServer(t, http.StatusInternalServerError, gin.H{"error": "LiveKit credentials not configured"})
	_, err := NewHTTPTokenSource(srv.URL, nil).Token(context.Background(), "v", me)
	if err == nil || !strings.Contains(err.Error(), "LiveKit credentials not configured") {
		t.Fatalf("err = %v", err)
	}
}
