package seed

var jobTitles = []string{
	"Senior Frontend Developer",
	"Full Stack Engineer",
	"React Developer",
	"Node.js Backend Developer",
	"Python Developer",
	"DevOps Engineer",
	"UI/UX Designer",
	"Product Manager",
	"Data Scientist",
	"Machine Learning Engineer",
	"Mobile App Developer",
	"Cloud Architect",
	"Security Engineer",
	"QA Engineer",
	"Technical Writer",
	"Scrum Master",
	"Business Analyst",
	"Sales Engineer",
	"Customer Success Manager",
	"Marketing Manager",
	"Content Creator",
	"Graphic Designer",
	"Digital Marketing Specialist",
	"HR Business Partner",
	"Financial Analyst",
}

var jobDescriptions = []string{
	"We are looking for a passionate developer to join our growing team. You'll work on cutting-edge projects and collaborate with talented engineers.",
	"Join our innovative team and help build the next generation of web applications. We offer competitive benefits and a flexible work environment.",
	"We're seeking a skilled professional to drive our technical initiatives forward. This role offers excellent growth opportunities and challenging projects.",
	"Be part of our mission to revolutionize the industry. We're looking for someone who is eager to learn and contribute to our dynamic team.",
	"Help us build scalable solutions that impact millions of users. We offer a collaborative environment and opportunities for professional development.",
}

var jobRequirements = [][]string{
	{"3+ years experience", "Strong problem-solving skills", "Team collaboration"},
	{"Bachelor's degree in CS or related field", "2+ years professional experience", "Excellent communication skills"},
	{"Proficiency in modern frameworks", "Experience with version control", "Agile methodology experience"},
	{"Strong analytical thinking", "Attention to detail", "Ability to work independently"},
	{"5+ years experience", "Leadership skills", "Mentoring experience"},
}

var jobLocations = []string{
	"San Francisco, CA",
	"New York, NY",
	"Austin, TX",
	"Seattle, WA",
	"Remote",
	"Boston, MA",
	"Chicago, IL",
	"Denver, CO",
	"Los Angeles, CA",
	"Portland, OR",
}

var jobTags = []string{
	"React", "TypeScript", "Node.js", "Python", "JavaScript", "AWS", "Docker", "Kubernetes",
	"Machine Learning", "Data Science", "UI/UX", "Design", "Marketing", "Sales", "HR",
	"Finance", "Agile", "Scrum", "DevOps", "Security", "Mobile", "iOS", "Android",
}

var emailDomains = []string{
	"gmail.com",
	"yahoo.com",
	"outlook.com",
	"hotmail.com",
	"company.com",
	"techcorp.com",
	"startup.io",
	"dev.com",
	"engineer.net",
	"professional.org",
}

var noteAuthors = []string{"John Smith", "Sarah Johnson", "Mike Davis", "Lisa Wilson", "Tom Brown"}

var noteContents = []string{
	"Great communication skills during the interview",
	"Strong technical background, would be a good fit",
	"Needs more experience with our tech stack",
	"Excellent problem-solving approach",
	"Cultural fit seems good, team liked them",
	"Concerns about availability for the role",
	"Very enthusiastic about the position",
	"Previous experience is relevant",
	"Would benefit from additional training",
	"Strong portfolio and references",
}

var timelineDescriptions = map[string][]string{
	"stage_change": {
		"Moved to screening stage",
		"Moved to technical interview",
		"Moved to offer stage",
		"Moved to final interview",
		"Moved to rejected stage",
	},
	"note_added": {
		"Note added by recruiter",
		"Note added by hiring manager",
	},
	"assessment_completed": {
		"Completed technical assessment",
		"Assessment submitted",
		"Assessment completed successfully",
	},
}

var assessmentTitles = []string{
	"Technical Skills Assessment",
	"Problem Solving Challenge",
	"Cultural Fit Interview",
	"Coding Challenge",
	"Design Portfolio Review",
}

var sectionTitles = []string{
	"Background",
	"Technical Depth",
	"Problem Solving",
	"Collaboration",
	"Tooling",
	"Delivery",
	"Communication",
}

var sectionDescriptions = []string{
	"Tell us about the work you have done so far.",
	"Questions covering the core skills for this role.",
	"How you approach unfamiliar problems.",
	"How you work with the people around you.",
}

var questionTitles = []string{
	"What is your experience with React?",
	"How do you handle state management?",
	"Describe a challenging project you worked on",
	"What is your approach to testing?",
	"How do you ensure code quality?",
	"What is your experience with version control?",
	"How do you handle performance optimization?",
	"Describe your experience with APIs",
	"What is your approach to debugging?",
	"How do you stay updated with new technologies?",
	"What is your experience with databases?",
	"How do you handle team collaboration?",
	"What is your experience with cloud platforms?",
	"How do you approach security in development?",
	"What is your experience with CI/CD?",
}

var questionDescriptions = []string{
	"Keep it short and concrete.",
	"Include an example from a recent project.",
	"There is no wrong answer here.",
}

var questionOptionSets = [][]string{
	{"Excellent", "Good", "Fair", "Poor"},
	{"Yes", "No", "Sometimes", "Not sure"},
	{"Strongly Agree", "Agree", "Neutral", "Disagree", "Strongly Disagree"},
	{"1-2 years", "3-5 years", "5-10 years", "10+ years"},
	{"Daily", "Weekly", "Monthly", "Rarely", "Never"},
}
