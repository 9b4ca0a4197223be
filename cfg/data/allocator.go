package data

import "sync"

// dict is the process-wide data-type dictionary (cfg.Config.Data),
// installed via Configure before the first Allocator call. Unlike xlog's
// write-once logger, each Configure call replaces the dictionary.
var (
	dictMu sync.RWMutex
	dict   map[string]interface{}
)

// Configure installs the data dictionary that Allocator resolves
// compound and aliased type names against. Passing nil is equivalent to
// a dictionary containing only built-in atomic types.
func Configure(d map[string]interface{}) {
	dictMu.Lock()
	defer dictMu.Unlock()
	dict = d
}

// Allocator resolves typeName against the built-in atomic-type table
// and the dictionary installed by Configure, returning a func() Buffer
// that yields a fresh, independently-allocated Buffer on each call.
func Allocator(typeName string) (func() Buffer, error) {
	dictMu.RLock()
	d := dict
	dictMu.RUnlock()

	ctor, err := resolve(typeName, d)
	if err != nil {
		return nil, err
	}
	return func() Buffer { return ctor() }, nil
}
