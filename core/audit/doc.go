// Package audit archives import outcomes on object storage.
//
// Every applied or rejected import is written as one JSON document under
// imports/<entity>/<tenant>/<import_id>.json. Archiving is best effort: callers
// log a failed Record and never change the import result because of it.
package audit
