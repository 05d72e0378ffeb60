// Package bridge is the only channel between an unprivileged UI and the
// host. It exposes exactly five operations (GetCredential, OpenTextFile,
// ChooseSavePath, WriteFile and LaunchScript) and one event, TerminalClosed.
//
// Every operation converts faults, including panics, into a [Fault] carried
// in its response, so callers never see a raw error or a crash. Operations
// keep no shared mutable state and may be invoked concurrently.
//
// A [Dispatcher] exposes the same surface as newline-delimited JSON so a
// separate UI process can drive it over stdio:
//
//	-> {"id":"1","op":"launch_script","params":{"path":"/w/interpreted_files/demoProcessed.py"}}
//	<- {"id":"1","result":{"launch_id":"6f1c..."}}
//	<- {"event":"terminal_closed","payload":{"launch_id":"6f1c...","message":"Terminal closed (exit code 0)","exit_code":0}}
//
// Lifecycle:
//
//	s := bridge.New(creds, dialogs, files, launcher, bridge.WithBus(bus))
//	resp := s.LaunchScript(bridge.LaunchScriptRequest{Path: p})
//	// ... TerminalClosed for resp.LaunchID arrives on the bus ...
//	s.Wait()
package bridge
