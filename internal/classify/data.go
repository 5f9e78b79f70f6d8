package classify

// Built-in fallback lists, used when configuration supplies none. The
// disposable set covers the providers most commonly seen in signup abuse;
// operators extend it through configuration.
var defaultDisposableDomains = []string{
	"0-mail.com",
	"10minutemail.com",
	"20minutemail.com",
	"33mail.com",
	"anonbox.net",
	"bugmenot.com",
	"deadaddress.com",
	"discard.email",
	"discardmail.com",
	"dispostable.com",
	"dodgeit.com",
	"fakeinbox.com",
	"getairmail.com",
	"guerrillamail.biz",
	"guerrillamail.com",
	"guerrillamail.de",
	"guerrillamail.net",
	"guerrillamail.org",
	"harakirimail.com",
	"incognitomail.com",
	"jetable.org",
	"mailcatch.com",
	"maildrop.cc",
	"mailinator.com",
	"mailinator.net",
	"mailinator2.com",
	"mailnesia.com",
	"mailnull.com",
	"mailsac.com",
	"meltmail.com",
	"mintemail.com",
	"mytemp.email",
	"mytrashmail.com",
	"nospammail.net",
	"notmailinator.com",
	"pookmail.com",
	"sharklasers.com",
	"spam4.me",
	"spambox.us",
	"spamgourmet.com",
	"spamhole.com",
	"temp-mail.io",
	"temp-mail.org",
	"tempail.com",
	"tempemail.net",
	"tempinbox.com",
	"tempmail2.com",
	"tempmailaddress.com",
	"temporaryinbox.com",
	"throwawaymail.com",
	"trash-mail.com",
	"trashmail.at",
	"trashmail.com",
	"trashmail.me",
	"trashmail.net",
	"trashymail.com",
	"wegwerfemail.de",
	"willselfdestruct.com",
	"yopmail.com",
	"yopmail.fr",
	"yopmail.net",
	"zippymail.info",
}

var defaultRolePrefixes = []string{
	"abuse",
	"admin",
	"administrator",
	"billing",
	"contact",
	"help",
	"hostmaster",
	"info",
	"marketing",
	"no-reply",
	"noreply",
	"office",
	"postmaster",
	"root",
	"sales",
	"security",
	"support",
	"team",
	"webmaster",
}
