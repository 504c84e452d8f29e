package sentiment

// Built-in lexicon tuned for product review vocabulary.

var positiveWords = []string{
	"amazing", "awesome", "beautiful", "best", "brilliant", "comfortable",
	"convenient", "delicious", "durable", "easy", "effective", "excellent",
	"fantastic", "fast", "favorite", "flawless", "fun", "good", "great",
	"happy", "helpful", "impressive", "incredible", "love", "loved", "loves",
	"nice", "outstanding", "perfect", "pleasant", "pleased", "quality",
	"quick", "recommend", "recommended", "reliable", "satisfied", "sleek",
	"smooth", "solid", "sturdy", "superb", "useful", "value", "wonderful",
	"worth",
}

var negativeWords = []string{
	"annoying", "awful", "bad", "broke", "broken", "cheap", "defective",
	"difficult", "disappointed", "disappointing", "dreadful", "expensive",
	"fail", "failed", "faulty", "flimsy", "fragile", "garbage", "hate",
	"hated", "horrible", "junk", "lousy", "mediocre", "misleading", "noisy",
	"overpriced", "poor", "refund", "regret", "return", "returned", "slow",
	"terrible", "trash", "unreliable", "unusable", "useless", "waste",
	"worst", "worthless",
}
