package types

// CallerHeader carries the address a mutating request acts as. The API is
// meant to sit behind a gateway that authenticates it.
const CallerHeader = "X-Caller-Address"
