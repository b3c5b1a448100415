package model

// InterrogationContext places the suspect in the scene
type InterrogationContext struct {
	DetectiveName string `json:"detective_name"`
	Location      string `json:"location"`
	SuspectsList  string `json:"suspects_list"`
}

// CoreRules are shared by every character prompt
type CoreRules struct {
	NonBreakableRuleset  string                `json:"non_breakable_ruleset"`
	CoreNarrative        string                `json:"core_narrative"`
	InterrogationContext *InterrogationContext `json:"interrogation_context,omitempty"`
	ForbiddenBehaviors   []string              `json:"forbidden_behaviors"`
	AllowedBehaviors     []string              `json:"allowed_behaviors"`
	FinalPurpose         string                `json:"final_purpose"`
}

// Character is a single suspect entry of character_database.json
type Character struct {
	Name                string            `json:"name"`
	Role                string            `json:"role"`
	FolderName          string            `json:"folder_name"`
	IdentityCore        string            `json:"identity_core"`
	PsychologicalShadow string            `json:"psychological_shadow"`
	InnerConflict       string            `json:"inner_conflict"`
	IdentityLens        string            `json:"identity_lens"`
	CorePhilosophy      string            `json:"core_philosophy"`
	DialogueStyle       string            `json:"dialogue_style"`
	ForbiddenLines      []string          `json:"forbidden_lines"`
	InterviewModes      []string          `json:"interview_modes"`
	EmotionMapping      map[string]string `json:"emotion_mapping"`
	Relationships       []Relationship    `json:"relationships,omitempty"`
	SubNarratives       []string          `json:"sub_narratives,omitempty"`
	SecretLore          string            `json:"secret_lore,omitempty"`
	SignatureLine       string            `json:"signature_line"`
}

// Relationship keeps the order in which the database lists them
type Relationship struct {
	Person   string `json:"person"`
	Relation string `json:"relation"`
}

// CharacterDatabase is the root of character_database.json
type CharacterDatabase struct {
	CoreRules  CoreRules            `json:"core_rules"`
	Characters map[string]Character `json:"characters"`
}
