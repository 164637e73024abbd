package models

import "fmt"

// UserRole is the application-level role carried on a profile.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleFounder UserRole = "founder"
)

func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleFounder
}

// MemberRole is the sub-role a profile holds inside one startup.
type MemberRole string

const (
	MemberRoleFounder MemberRole = "founder"
	MemberRoleTeam    MemberRole = "team"
)

func (r MemberRole) Valid() bool {
	return r == MemberRoleFounder || r == MemberRoleTeam
}

// ProspectStage is a flat pipeline position. Any stage may move to any other.
type ProspectStage string

const (
	StageNew              ProspectStage = "new"
	StageIntroMade        ProspectStage = "intro_made"
	StageRespondedYes     ProspectStage = "responded_yes"
	StageRespondedNo      ProspectStage = "responded_no"
	StageMeetingScheduled ProspectStage = "meeting_scheduled"
	StageDemoCompletedYes ProspectStage = "demo_completed_yes"
	StageDemoCompletedNo  ProspectStage = "demo_completed_no"
	StageProposalSent     ProspectStage = "proposal_sent"
	StageClosedWon        ProspectStage = "closed_won"
	StageClosedLost       ProspectStage = "closed_lost"
)

// Stages lists every pipeline stage in board order.
var Stages = []ProspectStage{
	StageNew,
	StageIntroMade,
	StageRespondedYes,
	StageRespondedNo,
	StageMeetingScheduled,
	StageDemoCompletedYes,
	StageDemoCompletedNo,
	StageProposalSent,
	StageClosedWon,
	StageClosedLost,
}

var stageLabels = map[ProspectStage]string{
	StageNew:              "New",
	StageIntroMade:        "Intro Made",
	StageRespondedYes:     "Responded (Yes)",
	StageRespondedNo:      "Responded (No)",
	StageMeetingScheduled: "Meeting Scheduled",
	StageDemoCompletedYes: "Demo Completed (Yes)",
	StageDemoCompletedNo:  "Demo Completed (No)",
	StageProposalSent:     "Proposal Sent",
	StageClosedWon:        "Closed Won",
	StageClosedLost:       "Closed Lost",
}

func (s ProspectStage) Valid() bool {
	_, ok := stageLabels[s]
	return ok
}

// Label returns the human-readable stage name.
func (s ProspectStage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

// ProspectFunction is the buyer function a prospect belongs to.
type ProspectFunction string

const (
	FunctionMarketing    ProspectFunction = "marketing"
	FunctionInsights     ProspectFunction = "insights"
	FunctionPartnerships ProspectFunction = "partnerships"
	FunctionOther        ProspectFunction = "other"
)

func (f ProspectFunction) Valid() bool {
	switch f {
	case FunctionMarketing, FunctionInsights, FunctionPartnerships, FunctionOther:
		return true
	}
	return false
}

// Industries is the fixed list a prospect's industry must come from.
var Industries = []string{
	"Advertising & Marketing",
	"Agency",
	"Alcohol & Spirits",
	"Apparel & Fashion",
	"Automotive",
	"Beauty & Cosmetics",
	"Consumer Electronics",
	"Consumer Packaged Goods (CPG)",
	"Entertainment & Media",
	"Financial Services",
	"Food & Beverage",
	"Gaming",
	"Healthcare & Pharma",
	"Hospitality & Travel",
	"Private Equity",
	"Quick Service Restaurant (QSR)",
	"Retail",
	"Sports & Fitness",
	"Technology",
	"Telecommunications",
	"Other",
}

// ValidIndustry reports whether name is one of Industries.
func ValidIndustry(name string) bool {
	for _, i := range Industries {
		if i == name {
			return true
		}
	}
	return false
}

type MaterialType string

const (
	MaterialPitchDeck   MaterialType = "pitch_deck"
	MaterialTrendReport MaterialType = "trend_report"
	MaterialOther       MaterialType = "other"
)

func (t MaterialType) Valid() bool {
	return t == MaterialPitchDeck || t == MaterialTrendReport || t == MaterialOther
}

type ScriptChannel string

const (
	ChannelText        ScriptChannel = "text"
	ChannelEmail       ScriptChannel = "email"
	ChannelLinkedIn    ScriptChannel = "linkedin"
	ChannelSocialMedia ScriptChannel = "social_media"
)

func (c ScriptChannel) Valid() bool {
	switch c {
	case ChannelText, ChannelEmail, ChannelLinkedIn, ChannelSocialMedia:
		return true
	}
	return false
}

// ActivityType tags an activity record with the kind of mutation it describes.
type ActivityType string

const (
	ActivityStageChange      ActivityType = "stage_change"
	ActivityNoteAdded        ActivityType = "note_added"
	ActivityMaterialUploaded ActivityType = "material_uploaded"
	ActivityMaterialDeleted  ActivityType = "material_deleted"
	ActivityProspectCreated  ActivityType = "prospect_created"
	ActivityProspectUpdated  ActivityType = "prospect_updated"
	ActivityProspectDeleted  ActivityType = "prospect_deleted"
	ActivityProspectRevived  ActivityType = "prospect_revived"
	ActivityProductCreated   ActivityType = "product_created"
	ActivityProductUpdated   ActivityType = "product_updated"
	ActivityProductDeleted   ActivityType = "product_deleted"
	ActivityScriptCreated    ActivityType = "script_created"
	ActivityScriptUpdated    ActivityType = "script_updated"
	ActivityScriptDeleted    ActivityType = "script_deleted"
	ActivityMemberJoined     ActivityType = "member_joined"
)

// ParseStage converts raw input into a ProspectStage, rejecting unknown values.
func ParseStage(raw string) (ProspectStage, error) {
	s := ProspectStage(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown stage %q", raw)
	}
	return s, nil
}
