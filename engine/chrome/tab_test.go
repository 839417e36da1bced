package chrome

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/visitkit/engine/loop"
	"gitlab.com/visitkit/mock"
	"gitlab.com/visitkit/session"
	"gitlab.com/visitkit/visitk"
	"gitlab.com/visitkit/visitor"
)

func testServer() (string, *http.Server) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html", []byte(`<html><body><a href="/two">two</a></body></html>`))
	})
	router.GET("/two", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html", []byte(`<html><body>two</body></html>`))
	})

	testListener, _ := net.Listen("tcp", "127.0.0.1:0")
	srv := &http.Server{Handler: router}
	go func() {
		if err := srv.Serve(testListener); err != http.ErrServerClosed {
			log.Fatalf("Serve(): %s", err)
		}
	}()
	return fmt.Sprintf("http://%s", testListener.Addr().String()), srv
}

// waitFor polls cond on the loop until it holds or the deadline passes
func waitFor(t *testing.T, l *loop.Loop, cond func() bool) {
	deadline := time.Now().Add(time.Second * 20)
	for time.Now().Before(deadline) {
		result := make(chan bool, 1)
		l.Post(func() { result <- cond() })
		if <-result {
			return
		}
		time.Sleep(time.Millisecond * 50)
	}
	t.Fatalf("timed out waiting for condition")
}

func TestNavigationType(t *testing.T) {
	assert.Equal(t, visitk.NavigationLinkActivated, navigationType("anchorClick"))
	assert.Equal(t, visitk.NavigationFormSubmitted, navigationType("formSubmissionPost"))
	assert.Equal(t, visitk.NavigationReload, navigationType("reloadBypassingCache"))
	assert.Equal(t, visitk.NavigationOther, navigationType("scriptInitiated"))
}

func TestChromeVisits(t *testing.T) {
	if os.Getenv("VISITKIT_CHROME_TEST") == "" {
		t.Skip("set VISITKIT_CHROME_TEST to run against a local chrome")
	}

	leaser := NewLeaser("")
	leaser.SetHeadless()
	b, err := leaser.Acquire()
	require.NoError(t, err)
	defer leaser.Return(b)

	base, srv := testServer()
	defer srv.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := loop.New()
	go l.Run(ctx)

	tab, err := NewTab(ctx, l, b)
	require.NoError(t, err)

	vctx := mock.MakeMockContext(ctx, mock.MustParse(base))
	s := session.New(vctx, tab, mock.MakeMockHistory(), nil)
	delegate := &mock.SessionDelegate{}
	s.SetDelegate(delegate)

	var boot *visitor.Visit
	l.Post(func() { boot = s.Visit(mock.MustParse(base+"/"), visitk.ActionAdvance) })
	waitFor(t, l, func() bool { return boot != nil && boot.State().Terminal() })
	require.Equal(t, visitk.VisitCompleted, boot.State())

	var two *visitor.Visit
	l.Post(func() {
		two = s.Visit(mock.MustParse(base+"/two"), visitk.ActionAdvance)
		s.CompleteNavigation()
	})
	waitFor(t, l, func() bool { return two != nil && two.State().Terminal() })
	assert.Equal(t, visitor.StrategyScript, two.Strategy())
	assert.Equal(t, visitk.VisitCompleted, two.State())
	assert.NotEmpty(t, two.RestorationIdentifier())
}
