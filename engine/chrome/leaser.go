package chrome

import (
	"io/ioutil"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd/v2"
)

var startupFlags = []string{
	"--enable-automation",
	"--test-type",
	"--disable-client-side-phishing-detection",
	"--disable-component-update",
	"--disable-infobars",
	"--disable-domain-reliability",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-new-browser-first-run",
	"--disable-default-apps",
	"--disable-popup-blocking",
	"--disable-extensions",
	"--disable-features=TranslateUI",
	"--disable-gpu",
	"--disable-dev-shm-usage",
	"--no-first-run",
	"--window-size=1024,768",
	"--safebrowsing-disable-auto-update",
	"--password-store=basic",
	"about:blank",
}

// ErrChromeNotFound no chrome binary was configured or found on the usual paths
var ErrChromeNotFound = errors.New("unable to find chrome")

// Leaser starts and stops local chrome processes
type Leaser struct {
	browserLock    sync.Mutex
	browsers       map[*gcd.Gcd]string
	flags          []string
	tmp            string
	chromeLocation string
}

// NewLeaser for chromePath, found on the usual install paths if empty
func NewLeaser(chromePath string) *Leaser {
	l := &Leaser{
		browsers:       make(map[*gcd.Gcd]string),
		flags:          append([]string{}, startupFlags...),
		chromeLocation: chromePath,
		tmp:            os.TempDir(),
	}
	if l.chromeLocation == "" {
		l.chromeLocation = FindChrome()
	}
	log.Info().Str("chrome", l.chromeLocation).Str("tmp", l.tmp).Msg("chrome leaser ready")
	return l
}

func (l *Leaser) SetHeadless() {
	l.flags = append(l.flags, "--headless")
}

// Acquire a new browser
func (l *Leaser) Acquire() (*gcd.Gcd, error) {
	if l.chromeLocation == "" {
		return nil, ErrChromeNotFound
	}

	profileDir, err := ioutil.TempDir(l.tmp, "visitkit")
	if err != nil {
		return nil, errors.Wrap(err, "creating profile dir")
	}
	port, err := randPort()
	if err != nil {
		return nil, err
	}

	b := gcd.NewChromeDebugger()
	b.DeleteProfileOnExit()
	b.AddFlags(l.flags)
	log.Info().Str("profile", profileDir).Str("port", port).Msg("starting chrome")
	if err := b.StartProcess(l.chromeLocation, profileDir, port); err != nil {
		return nil, errors.Wrap(err, "starting chrome")
	}

	l.browserLock.Lock()
	l.browsers[b] = port
	l.browserLock.Unlock()
	return b, nil
}

// Count how many browsers are running
func (l *Leaser) Count() int {
	l.browserLock.Lock()
	defer l.browserLock.Unlock()
	return len(l.browsers)
}

// Return (and kill) the browser
func (l *Leaser) Return(b *gcd.Gcd) error {
	l.browserLock.Lock()
	defer l.browserLock.Unlock()

	if _, ok := l.browsers[b]; !ok {
		return errors.New("not found")
	}
	delete(l.browsers, b)
	return b.ExitProcess()
}

// FindChrome on the usual install paths, empty if none exist
func FindChrome() string {
	if path := os.Getenv("CHROME_PATH"); path != "" {
		return path
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"}
	case "windows":
		candidates = []string{
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		}
	default:
		candidates = []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
		}
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func randPort() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", errors.Wrap(err, "finding free port")
	}
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), nil
}
