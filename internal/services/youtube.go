package services

import (
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
	yt "github.com/kkdai/youtube/v2"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

const transcriptSectionChars = 1200

var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

var youtubeHosts = map[string]struct{}{
	"youtube.com":     {},
	"www.youtube.com": {},
	"m.youtube.com":   {},
	"youtu.be":        {},
	"www.youtu.be":    {},
}

type YouTubeService struct {
	httpClient    *http.Client
	transcriptAPI *ytapi.YouTubeTranscriptApi
	ytClient      *yt.Client
}

// TranscriptEntry is one caption cue. Start and Duration are zero when
// the transcript source carries no timing.
type TranscriptEntry struct {
	Text     string
	Start    float64
	Duration float64
}

// VideoImport is a fully fetched video ready for ingestion.
type VideoImport struct {
	VideoID  string
	Title    string
	Sections []models.ParsedSection
}

type timedTextXML struct {
	XMLName xml.Name  `xml:"transcript"`
	Texts   []textXML `xml:"text"`
}

type textXML struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

func NewYouTubeService() *YouTubeService {
	return &YouTubeService{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		transcriptAPI: ytapi.NewYouTubeTranscriptApi(),
		ytClient:      &yt.Client{},
	}
}

// ParseVideoID extracts the 11-character video ID from a raw ID or any
// of the usual YouTube URL shapes. Returns an empty string when the
// input is not a recognizable YouTube reference.
func ParseVideoID(input string) string {
	value := strings.TrimSpace(input)
	if value == "" {
		return ""
	}

	if videoIDPattern.MatchString(value) {
		return value
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	if _, ok := youtubeHosts[host]; !ok {
		return ""
	}

	if strings.Contains(host, "youtu.be") {
		id := strings.Trim(parsed.Path, "/")
		if videoIDPattern.MatchString(id) {
			return id
		}
		return ""
	}

	if id := parsed.Query().Get("v"); videoIDPattern.MatchString(id) {
		return id
	}

	parts := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	for i, part := range parts {
		if (part == "embed" || part == "shorts") && i+1 < len(parts) {
			if videoIDPattern.MatchString(parts[i+1]) {
				return parts[i+1]
			}
		}
	}

	return ""
}

func formatTimestamp(seconds float64) string {
	clamped := int(seconds)
	if clamped < 0 {
		clamped = 0
	}

	hours := clamped / 3600
	minutes := (clamped % 3600) / 60
	secs := clamped % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

var sentenceEndPattern = regexp.MustCompile(`[.!?]$`)

// TranscriptToSections buckets caption cues into sections of roughly
// targetChars characters, splitting only after a sentence-ending cue so
// chunks stay coherent. Timed cues get "Time m:ss-m:ss" labels; untimed
// ones fall back to "Part N".
func TranscriptToSections(entries []TranscriptEntry, targetChars int) []models.ParsedSection {
	if targetChars <= 0 {
		targetChars = transcriptSectionChars
	}

	cleaned := make([]TranscriptEntry, 0, len(entries))
	hasTiming := false
	for _, entry := range entries {
		text := retrieval.CleanText(html.UnescapeString(entry.Text))
		if text == "" {
			continue
		}
		if entry.Start > 0 || entry.Duration > 0 {
			hasTiming = true
		}
		cleaned = append(cleaned, TranscriptEntry{Text: text, Start: entry.Start, Duration: entry.Duration})
	}
	if len(cleaned) == 0 {
		return nil
	}

	var sections []models.ParsedSection
	var bucket strings.Builder
	bucketStart := cleaned[0].Start
	bucketEnd := cleaned[0].Start

	flush := func() {
		text := retrieval.CleanText(bucket.String())
		bucket.Reset()
		if text == "" {
			return
		}

		label := fmt.Sprintf("Part %d", len(sections)+1)
		if hasTiming {
			label = fmt.Sprintf("Time %s-%s", formatTimestamp(bucketStart), formatTimestamp(bucketEnd))
		}
		sections = append(sections, models.ParsedSection{PageOrSection: label, Text: text})
	}

	for _, entry := range cleaned {
		duration := entry.Duration
		if duration < 0.5 {
			duration = 0.5
		}
		entryEnd := entry.Start + duration

		if bucket.Len() == 0 {
			bucketStart = entry.Start
			bucketEnd = entryEnd
			bucket.WriteString(entry.Text)
			continue
		}

		if bucket.Len()+1+len(entry.Text) >= targetChars && sentenceEndPattern.MatchString(bucket.String()) {
			flush()
			bucketStart = entry.Start
			bucketEnd = entryEnd
			bucket.WriteString(entry.Text)
			continue
		}

		bucket.WriteByte(' ')
		bucket.WriteString(entry.Text)
		bucketEnd = entryEnd
	}
	flush()

	return sections
}

// FetchVideoSections resolves a video reference to its title and
// transcript sections, ready for ingestion.
func (s *YouTubeService) FetchVideoSections(input string) (*VideoImport, error) {
	videoID := ParseVideoID(input)
	if videoID == "" {
		return nil, fmt.Errorf("invalid YouTube URL: provide a valid youtube.com or youtu.be link")
	}

	entries, err := s.fetchTranscriptEntries(videoID)
	if err != nil {
		return nil, err
	}

	sections := TranscriptToSections(entries, transcriptSectionChars)
	if len(sections) == 0 {
		return nil, fmt.Errorf("could not extract usable text from this video transcript")
	}

	return &VideoImport{
		VideoID:  videoID,
		Title:    s.resolveVideoTitle(videoID),
		Sections: sections,
	}, nil
}

// fetchTranscriptEntries prefers the timedtext captions because they
// carry cue timing. The transcript API is the fallback; its cues come
// back untimed.
func (s *YouTubeService) fetchTranscriptEntries(videoID string) ([]TranscriptEntry, error) {
	timed, timedErr := s.getTimedTextEntries(videoID)
	if timedErr == nil && len(timed) > 0 {
		return timed, nil
	}

	transcript, err := s.transcriptAPI.GetTranscript(videoID, []string{"en", "en-US", "en-GB"})
	if err != nil {
		// Fallback: request any available language
		transcript, err = s.transcriptAPI.GetTranscript(videoID, nil)
		if err != nil {
			return nil, fmt.Errorf("no transcript found for this video; timedtext failed (%v), transcript API failed (%v)", timedErr, err)
		}
	}

	entries := make([]TranscriptEntry, 0, len(transcript.Entries))
	for _, entry := range transcript.Entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		entries = append(entries, TranscriptEntry{Text: text})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no transcript found for this YouTube video; try another video with captions enabled")
	}

	return entries, nil
}

func (s *YouTubeService) getTimedTextEntries(videoID string) ([]TranscriptEntry, error) {
	pageURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	req, _ := http.NewRequest("GET", pageURL, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch YouTube page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read YouTube page: %w", err)
	}

	captionURL, err := extractCaptionURL(string(body))
	if err != nil {
		return nil, err
	}

	captionResp, err := s.httpClient.Get(captionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch captions: %w", err)
	}
	defer captionResp.Body.Close()

	captionBody, err := io.ReadAll(captionResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read captions: %w", err)
	}

	return parseCaptionsXML(captionBody)
}

func extractCaptionURL(pageHTML string) (string, error) {
	re := regexp.MustCompile(`"captionTracks"\s*:\s*\[(.*?)\],\s*"`)
	matches := re.FindStringSubmatch(pageHTML)
	if len(matches) < 2 {
		re2 := regexp.MustCompile(`"playerCaptionsTracklistRenderer"\s*:\s*\{(?:.*?,)?\s*"captionTracks"\s*:\s*\[(.*?)\],\s*"`)
		matches = re2.FindStringSubmatch(pageHTML)
		if len(matches) < 2 {
			return "", fmt.Errorf("no captions available for this video")
		}
	}

	tracksJSON := matches[1]
	reURL := regexp.MustCompile(`"baseUrl"\s*:\s*"(.*?)"`)
	urlMatches := reURL.FindStringSubmatch(tracksJSON)
	if len(urlMatches) < 2 {
		return "", fmt.Errorf("caption track found but baseUrl missing")
	}

	u := urlMatches[1]
	u = strings.ReplaceAll(u, `&`, "&")
	u = strings.ReplaceAll(u, `\/`, "/")

	return u, nil
}

func parseCaptionsXML(data []byte) ([]TranscriptEntry, error) {
	var tt timedTextXML
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, err
	}

	entries := make([]TranscriptEntry, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Text))
		if text == "" {
			continue
		}

		start, _ := strconv.ParseFloat(t.Start, 64)
		duration, _ := strconv.ParseFloat(t.Dur, 64)
		entries = append(entries, TranscriptEntry{Text: text, Start: start, Duration: duration})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("captions XML empty")
	}

	return entries, nil
}

// resolveVideoTitle asks the video metadata endpoint first and falls
// back to a synthetic name so imports never fail on a missing title.
func (s *YouTubeService) resolveVideoTitle(videoID string) string {
	video, err := s.ytClient.GetVideo(fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID))
	if err == nil && strings.TrimSpace(video.Title) != "" {
		return strings.TrimSpace(video.Title)
	}

	return fmt.Sprintf("YouTube-%s", videoID)
}
