// Package trends implements the windowed aggregation core: the
// insertion-ordered frequency counter, the series window manager, and the
// tick-driven aggregator that ties them to the retention store.
//
// The aggregator owns all series state and mutates it from a single
// goroutine; consumers read immutable completed frames only.
package trends
