package badger

import (
	"github.com/dgraph-io/badger/v3"

	"github.com/janelia-flyem/voxelio/dvid"
)

func getOptions(path string, config dvid.Config) (*badger.Options, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{})

	readOnly, found, err := config.GetBool("ReadOnly")
	if err != nil {
		return nil, err
	}
	if found {
		opts = opts.WithReadOnly(readOnly)
	}

	syncWrites, found, err := config.GetBool("SyncWrites")
	if err != nil {
		return nil, err
	}
	if found {
		opts = opts.WithSyncWrites(syncWrites)
	} else {
		opts = opts.WithSyncWrites(DefaultSyncWrites)
	}

	valueSizeThresh, found, err := config.GetInt("ValueThreshold")
	if err != nil {
		return nil, err
	}
	if found {
		opts = opts.WithValueThreshold(int64(valueSizeThresh))
	}

	vlogSize, found, err := config.GetInt("ValueLogFileSize")
	if err != nil {
		return nil, err
	}
	if found {
		opts = opts.WithValueLogFileSize(int64(vlogSize))
	}

	inMemory, found, err := config.GetBool("InMemory")
	if err != nil {
		return nil, err
	}
	if found && inMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	opts = opts.WithNumVersionsToKeep(DefaultVersionsToKeep)
	return &opts, nil
}

// badgerLogger routes badger's internal messages through the voxelio logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	dvid.Errorf("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	dvid.Warningf("badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	dvid.Debugf("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	dvid.Debugf("badger: "+format, args...)
}
