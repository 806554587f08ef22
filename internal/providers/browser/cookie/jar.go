package cookie

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/websession/internal/infrastructure/logging"
)

// SessionOnly is the expiration sentinel of cookies without a fixed
// expiry. Such cookies are only live while never-expire is in effect.
const SessionOnly int64 = 0

// Config is the jar wide policy. It is built once and passed to every jar;
// per-jar overrides live on the Jar itself.
type Config struct {
	// DefaultTTL is added to the current time by Set
	DefaultTTL time.Duration
	// NeverExpire makes every stored cookie live regardless of its timestamp
	NeverExpire bool
	// CacheDir holds <domain>.cookie files for jars without an explicit file
	CacheDir string
	// AutoSave persists the whole jar after every successful store
	AutoSave bool
}

// DefaultConfig returns a one day TTL with autosave on and no cache dir.
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 24 * time.Hour,
		AutoSave:   true,
	}
}

type entry struct {
	value  string
	expire int64
}

// Jar stores the cookies of a single domain.
type Jar struct {
	domain string
	cfg    Config

	fs     afero.Fs
	now    func() time.Time
	logger *logging.Logger

	saveMu sync.Mutex

	mu          sync.RWMutex
	cookies     map[string]entry
	neverExpire *bool
	cacheFile   string
}

// Option configures a Jar
type Option func(*Jar)

// WithFs sets the filesystem used for persistence
func WithFs(fs afero.Fs) Option {
	return func(j *Jar) { j.fs = fs }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(j *Jar) { j.now = now }
}

// WithLogger sets the jar logger
func WithLogger(l *logging.Logger) Option {
	return func(j *Jar) { j.logger = l }
}

// WithCacheFile pins the backing file instead of deriving it from CacheDir
func WithCacheFile(path string) Option {
	return func(j *Jar) { j.cacheFile = path }
}

// WithNeverExpire sets the local never-expire override
func WithNeverExpire(never bool) Option {
	return func(j *Jar) { j.neverExpire = &never }
}

// NewJar creates an empty jar for domain.
func NewJar(domain string, cfg Config, opts ...Option) *Jar {
	j := &Jar{
		domain:  domain,
		cfg:     cfg,
		fs:      afero.NewOsFs(),
		now:     time.Now,
		logger:  logging.NewNop(),
		cookies: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.logger = j.logger.Named("cookie").With(zap.String("domain", domain))
	return j
}

// Domain returns the domain the jar is scoped to
func (j *Jar) Domain() string {
	return j.domain
}

// Config returns the policy the jar was created with
func (j *Jar) Config() Config {
	return j.cfg
}

// Set stores a cookie that expires DefaultTTL from now.
func (j *Jar) Set(name, value string) {
	j.store(name, value, j.now().Add(j.cfg.DefaultTTL).Unix())
}

// SetExpiry stores a cookie with an explicit relative expiry:
// zero makes it session-only, a negative ttl deletes it and a positive
// ttl (rounded up to whole seconds) sets an absolute timestamp.
func (j *Jar) SetExpiry(name, value string, ttl time.Duration) {
	switch {
	case ttl < 0:
		j.Delete(name)
	case ttl == 0:
		j.store(name, value, SessionOnly)
	default:
		secs := int64(math.Ceil(ttl.Seconds()))
		j.store(name, value, j.now().Unix()+secs)
	}
}

// Delete removes a cookie. Deletes never trigger autosave.
func (j *Jar) Delete(name string) {
	j.mu.Lock()
	delete(j.cookies, name)
	j.mu.Unlock()
}

func (j *Jar) store(name, value string, expire int64) {
	if name == "" {
		return
	}

	j.mu.Lock()
	j.cookies[name] = entry{value: value, expire: expire}
	j.mu.Unlock()

	if !j.cfg.AutoSave {
		return
	}
	if err := j.Write(); err != nil && !errors.Is(err, ErrNoCacheFile) {
		j.logger.Warn("cookie autosave failed", zap.String("cookie", name), zap.Error(err))
	}
}

// Get returns the value of a live cookie.
func (j *Jar) Get(name string) (string, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	e, ok := j.cookies[name]
	if !ok || !j.live(e, j.now().Unix()) {
		return "", false
	}
	return e.value, true
}

// All returns every live cookie as name → value.
func (j *Jar) All() map[string]string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	now := j.now().Unix()
	out := make(map[string]string, len(j.cookies))
	for name, e := range j.cookies {
		if j.live(e, now) {
			out[name] = e.value
		}
	}
	return out
}

// Len returns the number of live cookies
func (j *Jar) Len() int {
	return len(j.All())
}

// String renders the live cookies as a Cookie header value, "a=1; b=2".
// Names are sorted so the header is stable between requests.
func (j *Jar) String() string {
	all := j.All()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+all[name])
	}
	return strings.Join(pairs, "; ")
}

// SetNeverExpire sets the local never-expire override, which wins over
// the jar config.
func (j *Jar) SetNeverExpire(never bool) {
	j.mu.Lock()
	j.neverExpire = &never
	j.mu.Unlock()
}

// ClearNeverExpire drops the local override so the config applies again
func (j *Jar) ClearNeverExpire() {
	j.mu.Lock()
	j.neverExpire = nil
	j.mu.Unlock()
}

// NeverExpire reports the effective never-expire setting
func (j *Jar) NeverExpire() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.neverExpireLocked()
}

func (j *Jar) neverExpireLocked() bool {
	if j.neverExpire != nil {
		return *j.neverExpire
	}
	return j.cfg.NeverExpire
}

// live must be called with mu held.
func (j *Jar) live(e entry, now int64) bool {
	return j.neverExpireLocked() || e.expire > now
}
