// Package genstage provides a demand-driven staged pipeline: a linear chain
// of concurrent stages where data flows from producer to consumer only in
// response to explicit, bounded demand issued by downstream stages.
//
// Three stage roles compose a pipeline:
//
// Producers have no upstream and emit events only when demand arrives.
// Transformers sit between two edges, relay demand upward and transformed
// events downward. Consumers are terminal and originate all demand on their
// own cadence; without their pulses no producer ever emits.
//
// Stages communicate exclusively over Subscriptions, directed edges carrying
// demand in one direction and event batches in the other. Each edge may cap
// its maximum outstanding demand, so a slow downstream never lets its
// upstream race ahead.
//
// # Quick Start
//
//	source := genstage.NewProducer("counter", 0,
//	    func(ctx context.Context, amount int, n int) ([]int, int, error) {
//	        events := make([]int, amount)
//	        for i := range events {
//	            events[i] = n + i
//	        }
//	        return events, n + amount, nil
//	    })
//	printer := genstage.NewConsumer("printer", struct{}{},
//	    func(ctx context.Context, events []int, s struct{}) (struct{}, error) {
//	        fmt.Println(events)
//	        return s, nil
//	    }, genstage.WithInterval(time.Second))
//
//	if _, err := genstage.Subscribe[int](printer, source, genstage.WithMaxDemand(1)); err != nil {
//	    log.Fatal(err)
//	}
//
//	pipeline := genstage.NewPipeline()
//	pipeline.Add(source, printer)
//	log.Fatal(pipeline.Run(ctx))
//
// Run blocks until the context is cancelled (clean shutdown) or a stage
// fails. A processing error or panic terminates the owning stage and fails
// the whole pipeline; there is no restart policy.
//
// For the stage processing contracts, see [DemandFunc], [TransformFunc] and
// [ConsumeFunc]. For domain stages built on this package, see the feed
// package.
package genstage
