package naming

import (
	"fmt"
	"strconv"
)

// DefaultWorkerPrefix is used when the configuration names no worker prefix.
const DefaultWorkerPrefix = "PTSlave"

// WorkerName returns the name downstream workers of a master carry.
// The name is derived from the master's provider ID only, so the same
// master always hands out the same worker name.
func WorkerName(prefix string, masterID int64) string {
	if prefix == "" {
		prefix = DefaultWorkerPrefix
	}
	return fmt.Sprintf("%s-under-%d", prefix, masterID)
}

// ArchiveKey returns the object key a master's downstream config is archived under.
func ArchiveKey(masterName string, masterID int64, file string) string {
	return masterName + "/" + strconv.FormatInt(masterID, 10) + "/" + file
}
