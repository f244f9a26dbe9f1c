// Package feedback holds the local view of remote device state.
//
// The Store keeps one Entry per (Kind, id) pair, partitioned by kind so the
// same numeric id can exist independently as a digital, ushort and string
// entry. Entries are written only by the ingestion path (the connection
// manager's read pump via the protocol codec) and are replaced wholesale on
// every update.
//
// # Notification
//
// Every Update, BatchUpdate and Clear fires exactly one notification to each
// registered subscriber, after the mutation is visible to Get. Subscribers
// come in two forms:
//
//   - Subscribe: a zero-argument callback, used by projections that re-read
//     the store on every change
//   - Watch: a callback that also receives the Change that was applied, used
//     by recorders (journal, telemetry, MQTT bridge)
//
// The subscriber set is snapshotted before each notification, so callbacks
// may subscribe or unsubscribe while being notified.
//
// # Usage
//
//	store := feedback.NewStore()
//	unsubscribe := store.Subscribe(func() {
//	    if e, ok := store.Get(feedback.KindUShort, 10); ok {
//	        fmt.Println("intensity", e.Value)
//	    }
//	})
//	defer unsubscribe()
//
//	store.Update(feedback.KindUShort, 10, 75)
//
// Thread Safety: All methods are safe for concurrent use. Callbacks must not
// write to the store they are subscribed to.
package feedback
