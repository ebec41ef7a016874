package questionnaire

// Catalog identifiers.
const (
	DASS21 = "DASS21"
	GAD7   = "GAD7"
	PHQ9   = "PHQ9"
	PCL5   = "PCL5"
)

// FlagSuicideRisk is raised by PHQ-9 when the self-harm item is answered above zero.
const FlagSuicideRisk = "suicide_risk"

var frequencyOptions = []Option{
	{Value: 0, Text: "Not at all"},
	{Value: 1, Text: "Several days"},
	{Value: 2, Text: "More than half the days"},
	{Value: 3, Text: "Nearly every day"},
}

func catalog() []Definition {
	return []Definition{dass21(), gad7(), phq9(), pcl5()}
}

func dass21() Definition {
	return Definition{
		ID:          DASS21,
		Name:        "Depression Anxiety Stress Scales (DASS-21)",
		Description: "Three self-report scales measuring the emotional states of depression, anxiety and stress over the past week.",
		Items: []string{
			"I found it hard to wind down",
			"I was aware of dryness of my mouth",
			"I couldn't seem to experience any positive feeling at all",
			"I experienced breathing difficulty (e.g. excessively rapid breathing, breathlessness in the absence of physical exertion)",
			"I found it difficult to work up the initiative to do things",
			"I tended to over-react to situations",
			"I experienced trembling (e.g. in the hands)",
			"I felt that I was using a lot of nervous energy",
			"I was worried about situations in which I might panic and make a fool of myself",
			"I felt that I had nothing to look forward to",
			"I found myself getting agitated",
			"I found it difficult to relax",
			"I felt down-hearted and blue",
			"I was intolerant of anything that kept me from getting on with what I was doing",
			"I felt I was close to panic",
			"I was unable to become enthusiastic about anything",
			"I felt I wasn't worth much as a person",
			"I felt that I was rather touchy",
			"I was aware of the action of my heart in the absence of physical exertion (e.g. sense of heart rate increase, heart missing a beat)",
			"I felt scared without any good reason",
			"I felt that life was meaningless",
		},
		Options: []Option{
			{Value: 0, Text: "Did not apply to me at all"},
			{Value: 1, Text: "Applied to me to some degree, or some of the time"},
			{Value: 2, Text: "Applied to me to a considerable degree, or a good part of time"},
			{Value: 3, Text: "Applied to me very much, or most of the time"},
		},
		MinValue: 0,
		MaxValue: 3,
		Scoring: Scoring{
			Subscales: []Subscale{
				{
					Name:       "depression",
					Items:      []int{2, 4, 9, 12, 15, 16, 20},
					Multiplier: 2,
					Bands: []Band{
						{Label: "Normal", Min: 0, Max: 9},
						{Label: "Mild", Min: 10, Max: 13},
						{Label: "Moderate", Min: 14, Max: 20},
						{Label: "Severe", Min: 21, Max: 27},
						{Label: "Extremely Severe", Min: 28, Max: 42},
					},
				},
				{
					Name:       "anxiety",
					Items:      []int{1, 3, 6, 8, 14, 18, 19},
					Multiplier: 2,
					Bands: []Band{
						{Label: "Normal", Min: 0, Max: 7},
						{Label: "Mild", Min: 8, Max: 9},
						{Label: "Moderate", Min: 10, Max: 14},
						{Label: "Severe", Min: 15, Max: 19},
						{Label: "Extremely Severe", Min: 20, Max: 42},
					},
				},
				{
					Name:       "stress",
					Items:      []int{0, 5, 7, 10, 11, 13, 17},
					Multiplier: 2,
					Bands: []Band{
						{Label: "Normal", Min: 0, Max: 14},
						{Label: "Mild", Min: 15, Max: 18},
						{Label: "Moderate", Min: 19, Max: 25},
						{Label: "Severe", Min: 26, Max: 33},
						{Label: "Extremely Severe", Min: 34, Max: 42},
					},
				},
			},
		},
	}
}

func gad7() Definition {
	return Definition{
		ID:          GAD7,
		Name:        "Generalized Anxiety Disorder Assessment (GAD-7)",
		Description: "Self-report questionnaire for screening and measuring the severity of generalized anxiety over the last two weeks.",
		Items: []string{
			"Feeling nervous, anxious, or on edge",
			"Not being able to stop or control worrying",
			"Worrying too much about different things",
			"Trouble relaxing",
			"Being so restless that it's hard to sit still",
			"Becoming easily annoyed or irritable",
			"Feeling afraid as if something awful might happen",
		},
		Options:  frequencyOptions,
		MinValue: 0,
		MaxValue: 3,
		Scoring: Scoring{
			Bands: []Band{
				{Label: "Minimal", Min: 0, Max: 4},
				{Label: "Mild", Min: 5, Max: 9},
				{Label: "Moderate", Min: 10, Max: 14},
				{Label: "Severe", Min: 15, Max: 21},
			},
		},
	}
}

func phq9() Definition {
	return Definition{
		ID:          PHQ9,
		Name:        "Patient Health Questionnaire (PHQ-9)",
		Description: "Instrument for screening, monitoring and measuring the severity of depression over the last two weeks.",
		Items: []string{
			"Little interest or pleasure in doing things",
			"Feeling down, depressed, or hopeless",
			"Trouble falling or staying asleep, or sleeping too much",
			"Feeling tired or having little energy",
			"Poor appetite or overeating",
			"Feeling bad about yourself, or that you are a failure or have let yourself or your family down",
			"Trouble concentrating on things, such as reading the newspaper or watching television",
			"Moving or speaking so slowly that other people could have noticed, or being so fidgety or restless that you have been moving around a lot more than usual",
			"Thoughts that you would be better off dead or of hurting yourself in some way",
		},
		Options:  frequencyOptions,
		MinValue: 0,
		MaxValue: 3,
		Scoring: Scoring{
			Bands: []Band{
				{Label: "None-Minimal", Min: 0, Max: 4},
				{Label: "Mild", Min: 5, Max: 9},
				{Label: "Moderate", Min: 10, Max: 14},
				{Label: "Moderately Severe", Min: 15, Max: 19},
				{Label: "Severe", Min: 20, Max: 27},
			},
			Flag: &Flag{Name: FlagSuicideRisk, Item: 8},
		},
	}
}

func pcl5() Definition {
	return Definition{
		ID:          PCL5,
		Name:        "PTSD Checklist for DSM-5 (PCL-5)",
		Description: "Twenty-item self-report measure of PTSD symptoms over the past month.",
		Items: []string{
			"Repeated, disturbing, and unwanted memories of the stressful experience?",
			"Repeated, disturbing dreams of the stressful experience?",
			"Suddenly feeling or acting as if the stressful experience were actually happening again (as if you were actually back there reliving it)?",
			"Feeling very upset when something reminded you of the stressful experience?",
			"Having strong physical reactions when something reminded you of the stressful experience (for example, heart pounding, trouble breathing, sweating)?",
			"Avoiding memories, thoughts, or feelings related to the stressful experience?",
			"Avoiding external reminders of the stressful experience (for example, people, places, conversations, activities, objects, or situations)?",
			"Trouble remembering important parts of the stressful experience?",
			"Having strong negative beliefs about yourself, other people, or the world?",
			"Blaming yourself or someone else for the stressful experience or what happened after it?",
			"Having strong negative feelings such as fear, horror, anger, guilt, or shame?",
			"Loss of interest in activities that you used to enjoy?",
			"Feeling distant or cut off from other people?",
			"Trouble experiencing positive feelings (for example, being unable to feel happiness or have loving feelings for people close to you)?",
			"Irritable behavior, angry outbursts, or acting aggressively?",
			"Taking too many risks or doing things that could cause you harm?",
			"Being \"superalert\" or watchful or on guard?",
			"Feeling jumpy or easily startled?",
			"Having difficulty concentrating?",
			"Trouble falling or staying asleep?",
		},
		Options: []Option{
			{Value: 0, Text: "Not at all"},
			{Value: 1, Text: "A little bit"},
			{Value: 2, Text: "Moderately"},
			{Value: 3, Text: "Quite a bit"},
			{Value: 4, Text: "Extremely"},
		},
		MinValue: 0,
		MaxValue: 4,
		Scoring: Scoring{
			Bands: []Band{
				{Label: "None", Min: 0, Max: 14},
				{Label: "Some PTSD symptoms", Min: 15, Max: 32},
				{Label: "Probable PTSD", Min: 33, Max: 80},
			},
		},
	}
}
