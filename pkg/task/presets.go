package task

// AvailableTags is the palette offered by the tag editor.
var AvailableTags = []string{
	"Plan", "Code", "Test", "Review", "Design", "Research", "Write",
	"Meeting", "Learning", "Practice", "Analysis", "Creative",
}

// Preset is a saved task that can be loaded into a draft.
type Preset struct {
	ID        int         `json:"id"`
	Name      string      `json:"name"`
	Tags      []string    `json:"tags"`
	CostTags  []string    `json:"costTags"`
	VideoTags []VideoLink `json:"videoTags"`
	Intensity string      `json:"intensity"`
	Vibe      Vibe        `json:"vibeSignature"`
	Time      string      `json:"time"`
}

func youTube(id, title string, tags ...string) VideoLink {
	return VideoLink{
		URL:          "https://www.youtube.com/watch?v=" + id,
		Title:        title,
		ThumbnailURL: "https://img.youtube.com/vi/" + id + "/hqdefault.jpg",
		Platform:     YouTube,
		Tags:         tags,
	}
}

func tikTok(url, title string, tags ...string) VideoLink {
	return VideoLink{URL: url, Title: title, ThumbnailURL: TikTokThumbnail, Platform: TikTok, Tags: tags}
}

// Presets returns the built-in saved tasks.
func Presets() []Preset {
	return []Preset{
		{ID: 1, Name: "Creative Brief Draft", Tags: []string{"Plan", "Design", "Creative"}, CostTags: []string{"$2/min", "$100"}, Intensity: "High", Vibe: Calm, Time: "1:30"},
		{ID: 2, Name: "Code Review Session", Tags: []string{"Code", "Review", "Analysis"}, CostTags: []string{"$3/min", "$150"}, Intensity: "Medium", Vibe: Focus, Time: "2:00"},
		{ID: 3, Name: "Research Phase", Tags: []string{"Research", "Analysis", "Learning"}, CostTags: []string{"$1.5/min", "$80"}, Intensity: "Low", Vibe: Calm, Time: "0:45"},
		{
			ID: 4, Name: "Home Decor Inspiration", Tags: []string{"Design", "Creative"}, CostTags: []string{"$1/min"},
			VideoTags: []VideoLink{youTube("AOZulahHWSk", "Modern Home Decor Ideas", "Home Decor", "DIY", "Interior Design")},
			Intensity: "High", Vibe: Energetic, Time: "1:15",
		},
		{
			ID: 5, Name: "Dream Travel Planning", Tags: []string{"Plan", "Research", "Adventure"},
			VideoTags: []VideoLink{youTube("kZ06nOhdr6Q", "Epic Travel Destinations", "Travel", "Adventure", "Vlog")},
			Intensity: "Medium", Vibe: Creative, Time: "2:30",
		},
		{
			ID: 6, Name: "Productivity App Review", Tags: []string{"Learning", "Tech"},
			VideoTags: []VideoLink{youTube("aHk0dK4L_Ok", "Best Productivity Apps", "Apps", "Productivity", "Tech Review")},
			Intensity: "Low", Vibe: Focus, Time: "0:45",
		},
		{
			ID: 7, Name: "Pet Playtime & Training", Tags: []string{"Pets", "Training"},
			VideoTags: []VideoLink{
				tikTok("https://www.tiktok.com/@bshtrio/video/7273262814976953643", "Funny Dog Feeding Habits", "Pets", "Dog Tricks", "Cute Animals"),
				tikTok("https://www.tiktok.com/@krity_s/video/7278708418293108010", "Cat's Playtime Adventures", "Pets", "Cat Lovers", "Funny"),
			},
			Intensity: "Medium", Vibe: Calm, Time: "1:00",
		},
	}
}
