package bridge

import (
	"encoding/json"

	"figsiner/internal/config"
	"figsiner/internal/section"
)

// Request message types sent by the plugin UI.
const (
	MsgRequestSettings = "REQUEST_SETTINGS"
	MsgSaveSettings    = "SAVE_SETTINGS"
	MsgVerifySettings  = "VERIFY_SETTINGS"
	MsgGenerateSection = "GENERATE_SECTION"
	MsgEditSection     = "EDIT_SECTION"
)

// Reply message types.
const (
	MsgSettings          = "SETTINGS"
	MsgSettingsSaved     = "SETTINGS_SAVED"
	MsgSettingsVerified  = "SETTINGS_VERIFIED"
	MsgGenerationSuccess = "GENERATION_SUCCESS"
	MsgGenerationError   = "GENERATION_ERROR"
	MsgPatchSuccess      = "PATCH_SUCCESS"
	MsgPatchError        = "PATCH_ERROR"
)

// Message is one request from the plugin UI.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Reply struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type GenerateRequest struct {
	Prompt   string           `json:"prompt"`
	Settings *config.Settings `json:"settings,omitempty"`
	// Targets are existing frame ids: desktop first, then mobile.
	Targets []string `json:"targets,omitempty"`
}

type EditRequest struct {
	EditBrief string           `json:"editBrief"`
	Settings  *config.Settings `json:"settings,omitempty"`
	FrameID   string           `json:"frameId"`
}

type VerifyResult struct {
	OK     bool     `json:"ok"`
	Models []string `json:"models,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type GenerationResult struct {
	ViewportFrames map[section.Viewport]string `json:"viewportFrames"`
}

type PatchResult struct {
	FrameID string   `json:"frameId"`
	Applied int      `json:"applied"`
	Skipped []string `json:"skipped,omitempty"`
}

type ErrorResult struct {
	Message string `json:"message"`
}
