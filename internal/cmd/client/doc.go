// Package client provides the `moor` command-line client.
//
// The CLI talks to the moor HTTP endpoints to perform common anchoring
// operations from a terminal. It is primarily intended for developers and
// operators.
//
// Installation
//
//	go install github.com/moorlog/moor/cmd/moor@latest
//
// Or build from this repo and use the embedded `moor` binary.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it reads
// the MOOR_HTTP environment variable and defaults to
// http://127.0.0.1:8080.
//
// # Submitter key
//
// Submissions carry a caller key in the X-Moor-Key header; the server
// derives the submitter identity from it. The key is read from MOOR_KEY
// or from the key file under the user config dir, and a fresh key is
// generated on first use. `moor key show` prints the derived identity,
// `moor key rotate` replaces the key (and with it the identity).
//
// Usage
//
//	moor anchor submit \
//	    --batch-id-hash 0x1f... --merkle-root 0x9c... \
//	    --chain-tag mainnet --note "nightly run"
//
//	# Batch submission: item i of each repeated flag forms one record
//	moor anchor batch \
//	    --batch-id-hash 0xaa... --merkle-root 0x01... \
//	    --batch-id-hash 0xbb... --merkle-root 0x02... \
//	    --chain-tag sepolia
//
//	moor anchor list --limit 10
//	moor anchor list --reverse --limit 10     # newest first
//	moor anchor get 42
//	moor anchor stats
//	moor anchor limits
//
//	# Stream accepted records as they land
//	moor anchor tail --from earliest
//	moor anchor tail --filter 'submitter == "0xabc..."'
//
// Notes
//
//   - list pages with next_token; pass it back via --start-token.
//   - tail consumes the server's SSE endpoint and prints one JSON event
//     per record. --filter is evaluated server-side (CEL).
package client
