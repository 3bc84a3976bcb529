// Package listquery implements the list controller shared by every
// record listing in the console.
//
// A Controller owns the query for one mounted listing (typed search
// text, the debounced search actually sent, the active filter tab,
// sort, page and page size), turns user input into a rate-limited
// sequence of fetches, and exposes a Snapshot for a rendering layer.
//
// The rules it enforces:
//
//   - Typing only stores text. A fetch happens when the debounced
//     search changes, which happens once input has been quiet for the
//     debounce delay.
//   - Any change to the set being listed (search, filter, sort, page
//     size) resets the page to 1 before the next request is built.
//   - SetPage only accepts pages that exist in the current set.
//   - The most recently issued request is authoritative. Responses for
//     abandoned parameter tuples are discarded; their requests are
//     cancelled.
//   - A failed fetch keeps previously displayed data unless the tuple
//     changed.
//
// Controllers are safe for concurrent use. Fetches run on their own
// goroutine and no lock is held across I/O.
package listquery
