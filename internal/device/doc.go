// Package device describes the controllable devices of a zone and projects
// the feedback store onto them.
//
// A Device names a physical device and carries its CommandTable: for each
// feedback kind, the operations it exposes and the command id each one uses.
// The same ids key the feedback the remote source reports for the device.
//
// # Projection
//
// Project reads the store for every id in a device's table and merges the
// present entries into one id-keyed Projection. Kinds are read in the order
// digital, ushort, string; when one id appears under several kinds the
// later kind wins.
//
// A Projector keeps a device's projection current. It computes once at
// construction and recomputes on every store notification. Until Close is
// called it reports each projection in which one of the device's entries was
// written, compared by Entry.Seq, so a repeated value is still reported.
//
// # Usage
//
//	light := device.Device{
//	    Name:     "Kitchen Ceiling",
//	    Category: device.CategoryLighting,
//	    Commands: device.CommandTable{
//	        feedback.KindDigital: {"power_on": 10, "power_off": 11},
//	        feedback.KindUShort:  {"intensity": 12},
//	    },
//	}
//
//	p := device.NewProjector(store, light, func(p device.Projection) {
//	    log.Info("light feedback", "values", p)
//	})
//	defer p.Close()
//
//	level, ok := p.Value(feedback.KindUShort, "intensity")
package device
