package wizard

import "context"

// Prompt anchors shared by every provider.
const (
	promptExistingRemotes = "Current remotes:"
	promptNoRemotes       = "No remotes found, make a new one?"
	promptName            = "name>"
	promptConfirm         = "Yes this is OK"
	promptEditorMenu      = "Edit existing remote"
	promptAdvanced        = "Edit advanced config?"
	promptAutoConfig      = "Use auto config?"
)

// Replies to rclone's menus.
const (
	replyNewRemote = "n"
	replyYes       = "y"
	replyNo        = "n"
	replyQuit      = "q"
)

// Reply produces the line sent in answer to a prompt. Literal replies ignore
// their arguments; secret replies ask the operator when the step executes.
type Reply func(ctx context.Context, s *replySession) (string, error)

// Step is one exchange of a transcript: wait for Expect to appear in the
// rclone output, then send one line produced by Reply.
type Step struct {
	Expect    string
	Reply     Reply
	Sensitive bool // reply is operator-supplied and must not be logged
}

func send(expect, reply string) Step {
	return Step{Expect: expect, Reply: func(context.Context, *replySession) (string, error) { return reply, nil }}
}

func ask(expect string, reply Reply) Step {
	return Step{Expect: expect, Reply: reply, Sensitive: true}
}

// transcripts holds the provider-specific steps, starting at the storage
// type prompt and ending before the shared confirmation suffix.
var transcripts = map[Provider][]Step{
	ProviderGDrive: {
		send("Storage>", "drive"),
		send("client_id>", ""),
		send("client_secret>", ""),
		send("scope>", "drive"),
		send("root_folder_id>", ""),
		send("service_account_file>", ""),
		send(promptAdvanced, replyNo),
		send(promptAutoConfig, replyYes),
		send("Configure this as a Shared Drive (Team Drive)?", replyNo),
	},
	ProviderDropbox: {
		send("Storage>", "dropbox"),
		send("client_id>", ""),
		send("client_secret>", ""),
		send(promptAdvanced, replyNo),
		send(promptAutoConfig, replyYes),
	},
	ProviderOneDrive: {
		send("Storage>", "onedrive"),
		send("client_id>", ""),
		send("client_secret>", ""),
		send("Choose national cloud region for OneDrive.", "global"),
		send(promptAdvanced, replyNo),
		send(promptAutoConfig, replyYes),
		send("Type of connection", "onedrive"),
		send("Drive OK?", replyYes),
	},
	ProviderBox: {
		send("Storage>", "box"),
		send("client_id>", ""),
		send("client_secret>", ""),
		send("box_config_file>", ""),
		send("access_token>", ""),
		send("box_sub_type>", "user"),
		send(promptAdvanced, replyNo),
		send(promptAutoConfig, replyYes),
	},
	// Nextcloud is configured as a WebDAV remote with operator-supplied
	// credentials and has no auto config step.
	ProviderNextcloud: {
		send("Storage>", "webdav"),
		ask("url>", serverURL),
		send("vendor>", "nextcloud"),
		ask("user>", loginUser),
		send("Option pass", replyYes),
		ask("Enter the password:", loginPassword),
		ask("Confirm the password:", loginPassword),
		send("bearer_token>", ""),
		send(promptAdvanced, replyNo),
	},
}

// commonSuffix confirms the new remote and leaves the editor menu. It runs
// exactly once after every provider transcript.
var commonSuffix = []Step{
	send(promptConfirm, replyYes),
	send(promptEditorMenu, replyQuit),
}

// script returns the full step list after the initial menu: the remote name,
// the provider transcript, then the shared suffix.
func script(p Provider, remoteName string) []Step {
	steps := make([]Step, 0, len(transcripts[p])+len(commonSuffix)+1)
	steps = append(steps, send(promptName, remoteName))
	steps = append(steps, transcripts[p]...)
	steps = append(steps, commonSuffix...)

	return steps
}
