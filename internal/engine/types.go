package engine

import "encoding/json"

// ParsedData is the structured content the engine extracts from resume text.
type ParsedData struct {
	Name          string       `json:"name" bson:"name"`
	Email         string       `json:"email" bson:"email"`
	Phone         string       `json:"phone" bson:"phone"`
	Skills        []string     `json:"skills" bson:"skills"`
	Experience    []Experience `json:"experience" bson:"experience"`
	Education     []Education  `json:"education" bson:"education"`
	Projects      []Project    `json:"projects" bson:"projects"`
	GithubProfile string       `json:"githubProfile,omitempty" bson:"github_profile,omitempty"`
	Summary       string       `json:"summary,omitempty" bson:"summary,omitempty"`
}

type Experience struct {
	Title       string `json:"title" bson:"title"`
	Company     string `json:"company" bson:"company"`
	Duration    string `json:"duration" bson:"duration"`
	Description string `json:"description" bson:"description"`
}

type Education struct {
	Degree      string `json:"degree" bson:"degree"`
	Institution string `json:"institution" bson:"institution"`
	Year        string `json:"year" bson:"year"`
}

// Project may carry free-form enrichment the engine attaches after
// looking at the repository or demo links.
type Project struct {
	Name            string          `json:"name" bson:"name"`
	Description     string          `json:"description" bson:"description"`
	Technologies    []string        `json:"technologies" bson:"technologies"`
	GithubURL       string          `json:"githubUrl,omitempty" bson:"github_url,omitempty"`
	LiveURL         string          `json:"liveUrl,omitempty" bson:"live_url,omitempty"`
	GithubAnalysis  json.RawMessage `json:"githubAnalysis,omitempty" bson:"github_analysis,omitempty"`
	WebsiteAnalysis json.RawMessage `json:"websiteAnalysis,omitempty" bson:"website_analysis,omitempty"`
}

// Analysis is the engine's summary judgement of a resume.
type Analysis struct {
	SkillLevel      string   `json:"skillLevel" bson:"skill_level"`
	PrimaryDomain   string   `json:"primaryDomain" bson:"primary_domain"`
	ExperienceYears float64  `json:"experienceYears" bson:"experience_years"`
	Strengths       []string `json:"strengths" bson:"strengths"`
	Recommendations []string `json:"recommendations" bson:"recommendations"`
}

type ParseResult struct {
	ParsedData ParsedData `json:"parsedData"`
	Analysis   Analysis   `json:"analysis"`
}

type JobRecommendation struct {
	JobTitle        string   `json:"jobTitle" bson:"job_title"`
	MatchPercentage float64  `json:"matchPercentage" bson:"match_percentage"`
	Reasoning       string   `json:"reasoning" bson:"reasoning"`
	RequiredSkills  []string `json:"requiredSkills" bson:"required_skills"`
	MatchedSkills   []string `json:"matchedSkills" bson:"matched_skills"`
	MissingSkills   []string `json:"missingSkills" bson:"missing_skills"`
}

// ResumeSnapshot is the resume context sent along with skill-gap and chat calls.
type ResumeSnapshot struct {
	ParsedData ParsedData `json:"parsedData"`
	Analysis   Analysis   `json:"analysis"`
	RawText    string     `json:"rawText,omitempty"`
}

type SkillImprovement struct {
	Skill         string `json:"skill" bson:"skill"`
	CurrentLevel  string `json:"currentLevel" bson:"current_level"`
	RequiredLevel string `json:"requiredLevel" bson:"required_level"`
	Priority      string `json:"priority" bson:"priority"`
}

type LearningStep struct {
	Skill         string   `json:"skill" bson:"skill"`
	Resources     []string `json:"resources" bson:"resources"`
	EstimatedTime string   `json:"estimatedTime" bson:"estimated_time"`
	Difficulty    string   `json:"difficulty" bson:"difficulty"`
}

// SkillGapReport is the engine's comparison of a resume against a target role.
type SkillGapReport struct {
	MatchPercentage float64            `json:"matchPercentage" bson:"match_percentage"`
	UserSkills      []string           `json:"userSkills" bson:"user_skills"`
	RequiredSkills  []string           `json:"requiredSkills" bson:"required_skills"`
	MatchedSkills   []string           `json:"matchedSkills" bson:"matched_skills"`
	MissingSkills   []string           `json:"missingSkills" bson:"missing_skills"`
	SkillsToImprove []SkillImprovement `json:"skillsToImprove" bson:"skills_to_improve"`
	LearningPath    []LearningStep     `json:"learningPath" bson:"learning_path"`
	Summary         string             `json:"summary" bson:"summary"`
	Recommendations []string           `json:"recommendations" bson:"recommendations"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatReply struct {
	Reply               string        `json:"reply"`
	ConversationHistory []ChatMessage `json:"conversationHistory,omitempty"`
}

type InterviewQuestion struct {
	Category   string `json:"category"`
	Question   string `json:"question"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Tip        string `json:"tip"`
}

// ClampPercentage bounds a match percentage to 0..100.
func ClampPercentage(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
