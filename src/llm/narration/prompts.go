package narration

const introPrompt = `You are a crime fiction writer. Write a short, gripping introduction for a detective game.

Story:
- A beloved beggar was murdered in the twelfth century in Medjugorje, Bosnia
- The beggar had reached spiritual enlightenment and the people loved him
- 800 years later, six suspects have mysteriously come back to life in a modern interrogation room in Washington
- They still wear medieval clothes and they are confused
- The detective must find the killer by interrogating them

Suspects:
1. The blacksmith (Garon): a weapon maker, the murder knife looks like his work
2. The nun (Sera): a devout woman with dark secrets
3. The merchant (Branko): the beggar's popularity had hurt his trade
4. The soldier (Ronan): he may have taken orders from the palace
5. The boy (Mikael): 13 years old, he competed with the beggar for alms
6. The cook (Dragan): he prepared sleeping draughts

Instructions:
- Write 3 or 4 short paragraphs
- Keep the tone mysterious and compelling
- Write in the third person
- Write only the story text, with no title or extra explanation`

const recapPrompt = `You are a journalist. Write a short news piece about day {day} of the murder investigation.

The case:
- A beloved beggar was murdered in the twelfth century in Medjugorje, Bosnia
- The beggar had reached spiritual enlightenment and the people loved him
- 800 years later, six suspects have mysteriously come back to life in Washington
- A stranger detective is interrogating them

Suspects: the blacksmith, the nun, the merchant, the soldier, the boy and the cook

Instructions:
- Write 2 short paragraphs
- Include the rumours and guesses of the people about the killer
- Keep the tone newsy and mysterious
- Mention that this is day {day} of the investigation
- Write only the news text`
