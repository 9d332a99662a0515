package instance

import "os"

// GetID returns the worker instance identifier: STREETFOOD_WORKER_ID, then the
// platform dyno name, then the hostname.
func GetID() string {
	for _, key := range []string{"STREETFOOD_WORKER_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
