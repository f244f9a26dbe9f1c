// Package site loads the zone and device description of an installation and
// manages the active zone session.
//
// A site file lists zones. Each zone names the WebSocket address of its
// remote source, its devices grouped by category and optional light presets:
//
//	zones:
//	  - name: Salon
//	    ws_url: ws://10.0.0.5:8080
//	    devices:
//	      lights:
//	        - name: Ceiling
//	          commands:
//	            digital: {power_on: 10, power_off: 11}
//	            ushort: {intensity: 12}
//	      blinds:
//	        - name: Store
//	          commands:
//	            digital: {power_up: 30, power_down: 31, stop: 32}
//	    light_presets:
//	      commands: {Morning: 100, Afternoon: 101, Evening: 102, "Off": 103}
//
// A Session owns the zone scope. Selecting a zone silently disconnects,
// clears the feedback store, builds one control per device and connects to
// the zone's address. Feedback from the previous zone never survives the
// switch.
package site
