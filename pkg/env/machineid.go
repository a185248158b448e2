package env

import (
	"github.com/denisbrodbeck/machineid"
)

const appID = "oscope.go"

// HostID retrieves a stable ID of this host, the machine ID hashed
// with the application ID.
func HostID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		panic(err)
	}
	return id
}
