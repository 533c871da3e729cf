package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/specialistvlad/scenegrid/internal/ctxlog"
	"github.com/specialistvlad/scenegrid/internal/fsutil"
	"github.com/specialistvlad/scenegrid/internal/rtype"
	"github.com/specialistvlad/scenegrid/internal/scene"
	lua "github.com/yuin/gopher-lua"
)

const (
	// Extension is the suffix of plugin files found in directories.
	Extension = ".lua"
	// DefaultTimeout bounds the run time of a single plugin file.
	DefaultTimeout = 5 * time.Second
)

// Option configures a Loader.
type Option func(*Loader)

// WithTimeout bounds the run time of each plugin file. Zero disables the
// limit.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// Loader runs plugin scripts that register node kinds.
type Loader struct {
	types   *scene.Types
	timeout time.Duration
}

// NewLoader returns a loader registering into the registry of types.
func NewLoader(types *scene.Types, opts ...Option) *Loader {
	l := &Loader{types: types, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadPath runs a plugin file, or every plugin file below a directory, and
// returns the node types they registered.
func (l *Loader) LoadPath(ctx context.Context, path string) ([]rtype.Type, error) {
	files, err := fsutil.ResolveFiles(path, Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plugin path %s: %w", path, err)
	}
	var all []rtype.Type
	for _, f := range files {
		got, err := l.LoadFile(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, got...)
	}
	ctxlog.FromContext(ctx).Info("Plugins loaded.", "files", len(files), "types", len(all))
	return all, nil
}

// LoadFile runs one plugin file.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]rtype.Type, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin %s: %w", path, err)
	}
	return l.Run(ctx, string(src), path)
}

// Run executes plugin source. chunkName identifies it in errors and logs.
func (l *Loader) Run(ctx context.Context, src, chunkName string) ([]rtype.Type, error) {
	logger := ctxlog.FromContext(ctx).With("plugin", chunkName)

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	L := newSandbox(logger)
	defer L.Close()
	L.SetContext(ctx)

	api := &sceneAPI{types: l.types, logger: logger}
	api.install(L)

	fn, err := L.Load(strings.NewReader(src), chunkName)
	if err != nil {
		return nil, fmt.Errorf("failed to compile plugin %s: %w", chunkName, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("plugin %s aborted: %w", chunkName, ctxErr)
		}
		return nil, fmt.Errorf("plugin %s failed: %w", chunkName, err)
	}

	logger.Debug("Plugin executed.", "registered", len(api.registered))
	return api.registered, nil
}

// newSandbox creates a Lua state with only the base, table, string and math
// libraries, and without the functions that load code from disk or strings.
func newSandbox(logger *slog.Logger) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, fn := range []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"} {
		L.SetGlobal(fn, lua.LNil)
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]any, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		logger.Info("Plugin output.", "args", parts)
		return 0
	}))
	return L
}
