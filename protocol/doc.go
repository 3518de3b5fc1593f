package protocol

// This package implements the wire level pieces of the line protocol that an
// ircconn client speaks to its server.
//
// The protocol aims to be
//
// - trivially framed
// - human readable
// - tolerant of peers that do not agree on a text encoding
//
// === General Syntax
//
// - lines are `\r\n` delimited, a bare `\n` is accepted when reading
// - a line may start with a `:<prefix> ` naming its origin
// - the first token after the prefix is the command, either a word (`PING`)
//   or a three digit numeric reply (`001`)
// - the remaining tokens are parameters; a parameter starting with `:` runs
//   to the end of the line
//
// For example
//   ```
//     :irc.example.net 001 nick :Welcome to the network\r\n
//     PING irc.example.net\r\n
//     :irc.example.net PONG irc.example.net :irc.example.net\r\n
//   ```
//
// === Bookkeeping replies
//
// The connection engine only understands two replies, everything else is
// passed through untouched.
//
// - `001` - registration succeeded, the server has accepted our login
// - `PONG` - reply to a liveness probe we sent with `PING`
//
// === Text encoding
//
// Lines are encoded with a configurable encoding (any label known to the
// WHATWG encoding index, e.g. `utf-8`, `iso-8859-1`, `koi8-r`).
//
// In recode mode lines are always written as UTF-8. Incoming lines are first
// decoded as strict UTF-8 and, when that fails, decoded again with the
// configured encoding. The choice is made per line so a single misbehaving
// peer on a shared server does not garble everyone else.
//
