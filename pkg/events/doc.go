/*
Package events provides a publish-subscribe broker for kernel
lifecycle events.

The kernel publishes an event whenever a task is registered, completes,
fails or is killed, and whenever a user or service is registered.
Subscribers receive events on buffered channels; a slow subscriber
drops events rather than blocking the kernel.

	broker := events.NewBroker()
	broker.Start()
	sub := broker.Subscribe()
	for event := range sub {
		fmt.Println(event.Type, event.Message)
	}
*/
package events
