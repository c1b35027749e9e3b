package query

// stopwords is the bilingual (French/English) set of tokens ignored when
// collecting fuzzy-search terms from a message. Includes command verbs,
// function words, schema vocabulary and common typos seen in real
// queries. Lowercased; compared against lowercased tokens.
var stopwords = map[string]struct{}{
	// French
	"cherche": {}, "trouve": {}, "recherche": {}, "moi": {}, "les": {}, "des": {}, "dans": {},
	"la": {}, "le": {}, "un": {}, "une": {}, "qui": {}, "que": {}, "est": {}, "sont": {},
	"avec": {}, "pour": {}, "sur": {}, "de": {}, "du": {}, "au": {}, "aux": {}, "info": {},
	"informations": {}, "donne": {}, "montre": {}, "affiche": {}, "tout": {}, "tous": {},
	"toutes": {}, "base": {}, "données": {}, "database": {}, "personnes": {}, "personne": {},
	"gens": {}, "liste": {}, "boulanger": {}, "caf": {}, "fait": {}, "faire": {},
	"approfondie": {}, "aprofondie": {}, "profonde": {}, "rechercher": {}, "cherhce": {},
	"details": {}, "detail": {}, "fiche": {}, "profil": {}, "osint": {}, "analyse": {},
	"analyser": {}, "rapport": {}, "propos": {}, "infos": {}, "chercher": {}, "trouver": {},
	"donner": {}, "montrer": {}, "afficher": {}, "lister": {}, "combien": {}, "nombre": {},
	"total": {}, "count": {}, "email": {}, "telephone": {}, "adresse": {}, "ville": {},
	"code": {}, "postal": {}, "nom": {}, "prenom": {}, "where": {}, "from": {}, "select": {},
	// English
	"find": {}, "search": {}, "look": {}, "lookup": {}, "get": {}, "show": {}, "give": {},
	"tell": {}, "about": {}, "the": {}, "and": {}, "for": {}, "with": {}, "this": {},
	"that": {}, "what": {}, "who": {}, "how": {}, "many": {}, "people": {}, "person": {},
	"user": {}, "users": {}, "information": {}, "data": {}, "deep": {}, "scan": {},
	"report": {}, "profile": {}, "investigate": {}, "investigation": {}, "check": {},
	"all": {}, "any": {}, "some": {}, "please": {}, "can": {}, "you": {}, "me": {},
	"his": {}, "her": {}, "their": {}, "address": {}, "city": {}, "phone": {}, "name": {},
	"first": {}, "last": {}, "number": {}, "results": {}, "much": {}, "more": {},
	"list": {}, "display": {}, "fetch": {}, "query": {}, "run": {},
}

func isStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
