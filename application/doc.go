// Package application glues the mtc issuance core to the outside
// world: the toml CA configuration, the JSON assertion batch input,
// PEM key files, the on-disk publication layout consumed by relying
// parties, and the leveldb batch store. The core itself never touches
// files; everything here translates between files and core values.
package application
