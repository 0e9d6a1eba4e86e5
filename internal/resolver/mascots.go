package resolver

import "strings"

// mascotSuffixes is the fixed vocabulary of mascot phrases stripped from the
// tail of a team name during normalization. Entries are lowercase; multi-word
// phrases are listed whole and matched before their single-word tails.
var mascotSuffixes = []string{
	"aggies",
	"anteaters",
	"aztecs",
	"badgers",
	"bearcats",
	"bearkats",
	"bears",
	"beavers",
	"bengals",
	"billikens",
	"bison",
	"blazers",
	"blue demons",
	"blue devils",
	"blue hens",
	"blue jays",
	"blue raiders",
	"bobcats",
	"boilermakers",
	"braves",
	"broncos",
	"bruins",
	"buccaneers",
	"buckeyes",
	"buffaloes",
	"bulldogs",
	"bulls",
	"cardinal",
	"cardinals",
	"catamounts",
	"cavaliers",
	"chanticleers",
	"chippewas",
	"colonels",
	"commodores",
	"cornhuskers",
	"cougars",
	"cowboys",
	"coyotes",
	"crimson tide",
	"crusaders",
	"cyclones",
	"demon deacons",
	"dolphins",
	"dons",
	"dukes",
	"eagles",
	"explorers",
	"falcons",
	"fighting camels",
	"fighting hawks",
	"fighting illini",
	"fighting irish",
	"flames",
	"flashes",
	"flyers",
	"friars",
	"gaels",
	"gamecocks",
	"gators",
	"gauchos",
	"golden bears",
	"golden eagles",
	"golden flashes",
	"golden gophers",
	"golden griffins",
	"golden grizzlies",
	"golden hurricane",
	"golden lions",
	"governors",
	"great danes",
	"green wave",
	"greyhounds",
	"grizzlies",
	"hawkeyes",
	"hawks",
	"highlanders",
	"hilltoppers",
	"hokies",
	"hoosiers",
	"horned frogs",
	"hoyas",
	"hurricanes",
	"huskies",
	"islanders",
	"jackrabbits",
	"jaguars",
	"jaspers",
	"jayhawks",
	"kangaroos",
	"knights",
	"lancers",
	"leathernecks",
	"leopards",
	"lions",
	"lobos",
	"longhorns",
	"lumberjacks",
	"mastodons",
	"matadors",
	"mavericks",
	"mean green",
	"midshipmen",
	"miners",
	"minutemen",
	"mocs",
	"monarchs",
	"mountain hawks",
	"mountaineers",
	"musketeers",
	"mustangs",
	"nittany lions",
	"norse",
	"orange",
	"ospreys",
	"owls",
	"paladins",
	"panthers",
	"patriots",
	"peacocks",
	"penguins",
	"phoenix",
	"pilots",
	"pioneers",
	"pirates",
	"privateers",
	"purple aces",
	"purple eagles",
	"quakers",
	"racers",
	"ragin cajuns",
	"rainbow warriors",
	"rams",
	"rattlers",
	"razorbacks",
	"rebels",
	"red flash",
	"red foxes",
	"red raiders",
	"red storm",
	"red wolves",
	"redbirds",
	"redhawks",
	"retrievers",
	"roadrunners",
	"rockets",
	"royals",
	"salukis",
	"scarlet knights",
	"seahawks",
	"seawolves",
	"seminoles",
	"shockers",
	"sooners",
	"spartans",
	"spiders",
	"stags",
	"sun devils",
	"sycamores",
	"tar heels",
	"terrapins",
	"terriers",
	"thundering herd",
	"tigers",
	"titans",
	"toreros",
	"tribe",
	"trojans",
	"utes",
	"vandals",
	"vikings",
	"volunteers",
	"warhawks",
	"warriors",
	"wildcats",
	"wolf pack",
	"wolfpack",
	"wolverines",
	"yellow jackets",
	"zips",
}

// stripMascotSuffix removes the longest known mascot phrase from the end of a
// lowercase name. The whole name is never consumed: a bare mascot word that IS
// the school name ("Phoenix") stays intact.
func stripMascotSuffix(lower string) string {
	best := ""
	for _, suffix := range mascotSuffixes {
		if len(suffix) <= len(best) {
			continue
		}
		if strings.HasSuffix(lower, " "+suffix) {
			best = suffix
		}
	}
	if best == "" {
		return lower
	}
	return strings.TrimSpace(strings.TrimSuffix(lower, best))
}
