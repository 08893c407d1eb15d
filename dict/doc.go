// Package dict implements a client for the DICT dictionary lookup
// protocol (RFC 2229 subset).
//
// Unlike the streaming packages, this protocol is stateless between
// requests: each query is one command line answered by one or more
// status lines and, for list responses, a text block terminated by a
// lone period. There is no concurrent data plane and no binary parsing.
//
// Example:
//
//	conn, err := dict.Dial("dict.org", 2628)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	defs, err := conn.Define("golang", "*")
package dict
