// Package updates polls the official publication pages of registered
// compliance frameworks and flags pages whose text suggests a revision was
// published. Detection is a heuristic phrase scan; a hit always requests
// manual review rather than asserting a new version.
package updates
