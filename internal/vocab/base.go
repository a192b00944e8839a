// Package vocab merges the built-in sentence vocabulary with user words and overrides.
package vocab

// Category is one built-in vocabulary tab.
type Category struct {
	ID    string
	Label string
	Icon  string
	Words []string
}

// WordColors is the palette words cycle through by merged index.
var WordColors = []string{
	"#10b981", // emerald
	"#ef4444", // red
	"#3b82f6", // blue
	"#f59e0b", // amber
	"#8b5cf6", // violet
	"#06b6d4", // cyan
	"#ec4899", // pink
	"#84cc16", // lime
	"#f97316", // orange
	"#6366f1", // indigo
	"#14b8a6", // teal
	"#a855f7", // purple
	"#22d3ee", // sky
	"#fb7185", // rose
	"#facc15", // yellow
	"#16a34a", // green
}

var baseCategories = []Category{
	{
		ID: "favorites", Label: "Favorites", Icon: "⭐",
		Words: []string{"I", "am", "want", "need", "help", "more", "please", "thank you", "yes", "no", "go", "stop", "like", "good", "bad", "happy"},
	},
	{
		ID: "helpers", Label: "Helper Words", Icon: "🔗",
		Words: []string{"am", "is", "are", "was", "were", "be", "been", "have", "has", "had", "do", "does", "did", "will", "would", "can", "could", "should", "may", "might", "must", "shall", "to", "not", "don't", "won't", "can't", "isn't", "aren't", "wasn't", "weren't", "haven't", "hasn't", "didn't", "doesn't", "wouldn't", "couldn't", "shouldn't"},
	},
	{
		ID: "people", Label: "People", Icon: "👥",
		Words: []string{"I", "you", "he", "she", "we", "they", "mom", "dad", "mama", "papa", "brother", "sister", "friend", "teacher", "doctor", "baby", "family", "person", "boy", "girl"},
	},
	{
		ID: "actions", Label: "Actions", Icon: "🏃",
		Words: []string{"want", "need", "go", "come", "eat", "drink", "play", "help", "stop", "start", "like", "love", "see", "look", "hear", "listen", "talk", "say", "give", "take", "put", "get", "make", "do", "work", "sleep", "wake", "sit", "stand", "walk", "run", "jump", "dance", "sing", "read", "write", "draw", "cook", "clean", "wash", "brush", "open", "close", "turn", "push", "pull"},
	},
	{
		ID: "things", Label: "Things", Icon: "📦",
		Words: []string{"food", "water", "milk", "juice", "bread", "apple", "banana", "pizza", "cookie", "candy", "toy", "ball", "book", "phone", "computer", "TV", "car", "bus", "bike", "chair", "table", "bed", "door", "window", "cup", "plate", "spoon", "fork", "shirt", "pants", "shoes", "hat", "bag", "money", "key", "medicine"},
	},
	{
		ID: "places", Label: "Places", Icon: "🏠",
		Words: []string{"home", "house", "school", "store", "park", "hospital", "bathroom", "bedroom", "kitchen", "outside", "inside", "here", "there", "up", "down", "in", "out", "on", "under", "next", "behind", "front", "back"},
	},
	{
		ID: "feelings", Label: "Feelings", Icon: "😊",
		Words: []string{"happy", "sad", "angry", "mad", "excited", "scared", "worried", "surprised", "tired", "sleepy", "hungry", "thirsty", "sick", "hurt", "pain", "better", "good", "bad", "okay", "fine", "great", "awful", "love", "hate", "like", "dislike"},
	},
	{
		ID: "describe", Label: "Describe", Icon: "🎨",
		Words: []string{"big", "small", "little", "tiny", "huge", "long", "short", "tall", "wide", "narrow", "thick", "thin", "heavy", "light", "fast", "slow", "hot", "cold", "warm", "cool", "wet", "dry", "clean", "dirty", "new", "old", "young", "pretty", "ugly", "nice", "mean", "funny", "serious", "loud", "quiet", "soft", "hard", "smooth", "rough", "sharp", "dull"},
	},
	{
		ID: "time", Label: "Time", Icon: "⏰",
		Words: []string{"now", "later", "soon", "today", "tomorrow", "yesterday", "morning", "afternoon", "evening", "night", "early", "late", "before", "after", "first", "last", "next", "always", "never", "sometimes", "again", "still", "already", "yet", "when", "while", "during"},
	},
	{
		ID: "social", Label: "Social", Icon: "💬",
		Words: []string{"hello", "hi", "goodbye", "bye", "please", "thank you", "thanks", "sorry", "excuse me", "yes", "no", "maybe", "okay", "sure", "welcome", "congratulations", "good morning", "good night", "how are you", "fine", "good", "great", "wonderful", "awesome", "cool", "wow", "oh no", "uh oh", "oops"},
	},
	{
		ID: "punctuation", Label: "Punctuation", Icon: "❓",
		Words: []string{".", "?", "!", ",", ";", ":", "-", "(", ")", "...", "—", "'", `"`, "&", "@", "#", "%", "*", "+", "=", "/", `\`, "|", "~", "`"},
	},
}

// Base returns the built-in categories in display order.
func Base() []Category {
	out := make([]Category, len(baseCategories))
	for i, c := range baseCategories {
		c.Words = append([]string(nil), c.Words...)
		out[i] = c
	}
	return out
}

// Lookup returns the built-in category with id.
func Lookup(id string) (Category, bool) {
	for _, c := range baseCategories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// BaseLen is the number of built-in words in category id.
func BaseLen(id string) int {
	c, _ := Lookup(id)
	return len(c.Words)
}

// ColorFor returns the palette color for a merged word index.
func ColorFor(index int) string {
	if index < 0 {
		index = -index
	}
	return WordColors[index%len(WordColors)]
}
