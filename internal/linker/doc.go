// Package linker orchestrates the link pipeline: module acquisition,
// merging, target sanitizing, symbol internalization, optimization,
// debug-info stripping and emission. It decides which backend operations run,
// in what order and with what policy inputs; the IR work itself lives in the
// backend package.
package linker
