// Package control implements the device controls that turn user intent into
// commands and reflect device feedback back into local state.
//
// Every control owns a device.Projector for its device and a Guard per
// continuously adjustable value. While a gesture is active the control keeps
// sending every intermediate value but ignores feedback for the id it is
// adjusting, so a lagging echo never fights the user. When the gesture ends
// the locally chosen value stays until the next feedback for that id.
//
// Controls:
//
//   - LevelControl: one guarded ushort operation
//   - LightControl: power switch plus guarded intensity
//   - ThermostatControl: guarded target temperature (16-30) plus the
//     read-only current temperature
//   - AudioControl: guarded volume and subwoofer level plus mute
//   - MomentaryControl: digital-only devices such as blinds
//
// New picks the control for a device's category. Controls subscribe on
// construction and must be closed to release their store subscription.
package control
